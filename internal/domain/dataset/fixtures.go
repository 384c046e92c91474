package dataset

// GrandTotalLabel is the literal last row of the country table. Its count is
// fixed at 1 and is not an aggregate of the other rows.
const GrandTotalLabel = "Total Keseluruhan"

var countryTable = CountryCounts{
	{"United States", 735},
	{"United Kingdom", 180},
	{"Canada", 75},
	{"Germany", 40},
	{"Netherlands", 30},
	{"Ireland", 28},
	{"Australia", 25},
	{"France", 20},
	{"India", 18},
	{"Poland", 16},
	{"New Zealand", 14},
	{"Switzerland", 13},
	{"Sweden", 11},
	{"Italy", 10},
	{"Brazil", 9},
	{"Belgium", 8},
	{"South Africa", 7},
	{"Israel", 7},
	{"Singapore", 6},
	{"Austria", 6},
	{"Bulgaria", 5},
	{"Mexico", 5},
	{"Finland", 5},
	{"Russia", 4},
	{"Colombia", 4},
	{"Greece", 3},
	{"Portugal", 3},
	{"Croatia", 3},
	{"Spain", 3},
	{"Slovenia", 3},
	{"Thailand", 2},
	{"Romania", 2},
	{"Ukraine", 2},
	{"Uruguay", 2},
	{"Philippines", 2},
	{"Japan", 1},
	{"Norway", 1},
	{"Moldova", 1},
	{"Latvia", 1},
	{"Hungary", 1},
	{"Georgia", 1},
	{"Egypt", 1},
	{"Denmark", 1},
	{"Czech Republic", 1},
	{"Bosnia and Herzegovina", 1},
	{"China", 1},
	{GrandTotalLabel, 1},
}

var genderTable = GenderShares{
	{"Male", 77.6},
	{"Female", 15.5},
	{"Other", 6.9},
}
