package universe

import "lifegame/src/life"

//built-in seeding templates, added to every new universe
var builtinTemplates = []Template{
	{"blinker", "period 2 oscillator", []life.Point{{X: 1, Y: 2}, {X: 2, Y: 2}, {X: 3, Y: 2}}},
	{"block", "still life", []life.Point{{X: 1, Y: 1}, {X: 2, Y: 1}, {X: 1, Y: 2}, {X: 2, Y: 2}}},
	{"glider", "moves diagonally until it hits the edge", []life.Point{{X: 1, Y: 0}, {X: 2, Y: 1}, {X: 0, Y: 2}, {X: 1, Y: 2}, {X: 2, Y: 2}}},
	{"sample", "the test sample with 3 stable patterns", []life.Point{
		{X: 1, Y: 1}, {X: 1, Y: 2},
		{X: 2, Y: 1}, {X: 2, Y: 2},
		{X: 3, Y: 3},
		{X: 4, Y: 2},
		{X: 4, Y: 3},
		{X: 5, Y: 3},
	}},
}
