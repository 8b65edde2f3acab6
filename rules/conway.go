package rules

/*
ApplyConwayRules applies Conway's Game of Life rules to determine the next state of a cell.

	alive, neighbors < 2      -> dead (underpopulation)
	alive, neighbors 2 or 3   -> alive
	alive, neighbors > 3      -> dead (overpopulation)
	dead,  neighbors == 3     -> alive (birth)
	dead,  any other count    -> dead

which collapses to: (alive && neighbors == 2) || neighbors == 3
*/
func ApplyConwayRules(neighbors int, alive bool) bool {
	return (alive && neighbors == 2) || neighbors == 3
}
