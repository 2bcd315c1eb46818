package threefind

// Level defines a campaign level with a score target.
type Level struct {
	ID     int
	Name   string
	Target int // Total score needed to clear the level
}

// Levels defines the campaign. Targets are cumulative; the score carries
// over between levels and the move budget resets.
var Levels = []Level{
	{ID: 1, Name: "First Light", Target: 600},
	{ID: 2, Name: "Two Faces", Target: 1500},
	{ID: 3, Name: "Undertow", Target: 2700},
	{ID: 4, Name: "Chain Reaction", Target: 4200},
	{ID: 5, Name: "Deep Shelf", Target: 6000},
	{ID: 6, Name: "Mirror Row", Target: 8200},
	{ID: 7, Name: "Long Fall", Target: 10800},
	{ID: 8, Name: "Hidden Hand", Target: 13800},
	{ID: 9, Name: "Cascade Crown", Target: 17200},
	{ID: 10, Name: "Threefold", Target: 21000},
}

// LevelCount returns the number of campaign levels.
func LevelCount() int {
	return len(Levels)
}

// GetLevel returns the level at the given index (0-based).
// Returns nil if index is out of range.
func GetLevel(index int) *Level {
	if index < 0 || index >= len(Levels) {
		return nil
	}
	return &Levels[index]
}

// LevelNames returns the names of all levels.
func LevelNames() []string {
	names := make([]string, len(Levels))
	for i, lvl := range Levels {
		names[i] = lvl.Name
	}
	return names
}
