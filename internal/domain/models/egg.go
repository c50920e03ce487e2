package models

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// EggKey identifies one of the fixed egg classification categories.
type EggKey string

const (
	IncubablesNido EggKey = "incubables_nido"
	IncubablesPiso EggKey = "incubables_piso"
	SuciosNido     EggKey = "sucios_nido"
	SuciosPiso     EggKey = "sucios_piso"
	TrizadosNido   EggKey = "trizados_nido"
	TrizadosPiso   EggKey = "trizados_piso"
	DoblesNido     EggKey = "dobles_nido"
	DoblesPiso     EggKey = "dobles_piso"
)

// EggKeys lists every category in display order.
var EggKeys = []EggKey{
	IncubablesNido, IncubablesPiso,
	SuciosNido, SuciosPiso,
	TrizadosNido, TrizadosPiso,
	DoblesNido, DoblesPiso,
}

// EggKeyLabels maps categories to their Spanish display labels.
var EggKeyLabels = map[EggKey]string{
	IncubablesNido: "Incubables de nido",
	IncubablesPiso: "Incubables de piso",
	SuciosNido:     "Sucios de nido",
	SuciosPiso:     "Sucios de piso",
	TrizadosNido:   "Trizados de nido",
	TrizadosPiso:   "Trizados de piso",
	DoblesNido:     "Dobles de nido",
	DoblesPiso:     "Dobles de piso",
}

// Valid reports whether k belongs to the fixed category set.
func (k EggKey) Valid() bool {
	_, ok := EggKeyLabels[k]
	return ok
}

// EggCounts maps every category to a non-negative count.
type EggCounts map[EggKey]int

// EmptyCounts returns a counts map with every category at zero.
func EmptyCounts() EggCounts {
	counts := make(EggCounts, len(EggKeys))
	for _, k := range EggKeys {
		counts[k] = 0
	}
	return counts
}

// Normalize returns a full copy of c laid over the default-zero map: every
// category present, unknown keys dropped, negative values clamped to zero.
func (c EggCounts) Normalize() EggCounts {
	counts := EmptyCounts()
	for k, v := range c {
		if !k.Valid() {
			continue
		}
		if v < 0 {
			v = 0
		}
		counts[k] = v
	}
	return counts
}

// Total sums every category.
func (c EggCounts) Total() int {
	var total int
	for _, k := range EggKeys {
		total += c[k]
	}
	return total
}

// EggRecord is the one logical record per (farm, shed, calendar date).
// The date string YYYY-MM-DD is the record's key within its shed.
type EggRecord struct {
	Date      string    `bson:"date" json:"date"`
	FarmID    string    `bson:"farm_id" json:"farmId"`
	ShedID    string    `bson:"shed_id" json:"shedId"`
	SectorID  int       `bson:"sector_id,omitempty" json:"sectorId,omitempty"`
	ShedLabel string    `bson:"shed_label" json:"shedLabel"`
	Counts    EggCounts `bson:"counts" json:"counts"`
	Notes     string    `bson:"notes,omitempty" json:"notes,omitempty"`
	UserID    string    `bson:"user_id" json:"userId"`
	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
}

// DateLayout is the canonical record date format. Zero-padded, so
// lexicographic order on date strings equals chronological order.
const DateLayout = "2006-01-02"

var shedIDPattern = regexp.MustCompile(`^S(\d+)([AB])$`)

// SectorMeta carries the display metadata derivable from a shed id.
type SectorMeta struct {
	SectorID int
	Letter   string
	Label    string
	Matched  bool
}

// DeriveSectorMeta parses a shed id of the form S<sector><A|B> (e.g. S7B)
// into its sector number, letter and display label. Non-matching ids fall
// back to the raw id as label with no sector. Pure and idempotent.
func DeriveSectorMeta(shedID string) SectorMeta {
	m := shedIDPattern.FindStringSubmatch(shedID)
	if m == nil {
		return SectorMeta{Label: shedID}
	}

	sector, err := strconv.Atoi(m[1])
	if err != nil {
		return SectorMeta{Label: shedID}
	}

	return SectorMeta{
		SectorID: sector,
		Letter:   m[2],
		Label:    fmt.Sprintf("Sector %d - Galpón %s", sector, m[2]),
		Matched:  true,
	}
}
