// Package catalog holds the fixed fantasy player roster and the event
// templates a match draws from. Both are read-only and safe to share
// without locking.
package catalog

import "github.com/mcdev12/skirmish/go/internal/models"

// FantasyPlayers is the full assignable roster. Each match splits it into
// two disjoint halves, one per side.
var FantasyPlayers = []models.FantasyPlayer{
	{ID: "p1", Name: "Aragorn", Position: "Warrior", BaseSkill: 85},
	{ID: "p2", Name: "Legolas", Position: "Archer", BaseSkill: 90},
	{ID: "p3", Name: "Gimli", Position: "Tank", BaseSkill: 80},
	{ID: "p4", Name: "Gandalf", Position: "Mage", BaseSkill: 95},
	{ID: "p5", Name: "Boromir", Position: "Knight", BaseSkill: 75},
	{ID: "p6", Name: "Frodo", Position: "Scout", BaseSkill: 70},
	{ID: "p7", Name: "Sam", Position: "Support", BaseSkill: 72},
	{ID: "p8", Name: "Merry", Position: "Rogue", BaseSkill: 68},
	{ID: "p9", Name: "Pippin", Position: "Bard", BaseSkill: 65},
	{ID: "p10", Name: "Faramir", Position: "Ranger", BaseSkill: 82},
}

// EventTemplates are the candidate actions for each tick. Points lists mix
// positive and negative swings.
var EventTemplates = []models.EventTemplate{
	{Action: "landed a critical hit", Points: []int{15, 20, 25}},
	{Action: "cast a powerful spell", Points: []int{18, 22, 28}},
	{Action: "made a tactical error", Points: []int{-15, -10, -8}},
	{Action: "defended successfully", Points: []int{10, 12, 15}},
	{Action: "got ambushed", Points: []int{-20, -15, -12}},
	{Action: "found rare treasure", Points: []int{25, 30, 35}},
	{Action: "failed to dodge", Points: []int{-8, -6, -4}},
	{Action: "executed perfect combo", Points: []int{20, 25, 30}},
	{Action: "lost concentration", Points: []int{-12, -8, -5}},
	{Action: "inspired the team", Points: []int{16, 18, 22}},
}

// FirstHalf returns the roster half assigned to the room creator.
func FirstHalf() []models.FantasyPlayer {
	return FantasyPlayers[:len(FantasyPlayers)/2]
}

// SecondHalf returns the roster half assigned to the joining side.
func SecondHalf() []models.FantasyPlayer {
	return FantasyPlayers[len(FantasyPlayers)/2:]
}
