package models

import "fmt"

// Shed describes one physical housing unit of the farm.
type Shed struct {
	ID     string `json:"id"`
	Label  string `json:"label"`
	Sector int    `json:"sector"`
	Letter string `json:"letter"`
}

// ShedCatalog generates the shed list for a farm with the given number of
// sectors, two sheds (A and B) per sector.
func ShedCatalog(sectors int) []Shed {
	sheds := make([]Shed, 0, sectors*2)
	for sector := 1; sector <= sectors; sector++ {
		for _, letter := range []string{"A", "B"} {
			sheds = append(sheds, Shed{
				ID:     fmt.Sprintf("S%d%s", sector, letter),
				Label:  fmt.Sprintf("Sector %d - Galpón %s", sector, letter),
				Sector: sector,
				Letter: letter,
			})
		}
	}
	return sheds
}
