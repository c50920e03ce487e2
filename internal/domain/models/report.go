package models

import "time"

// ShedSummary aggregates category totals for one shed over a date range.
// Snapshots produced by the weekly scheduler are stored in MongoDB.
type ShedSummary struct {
	FarmID    string    `bson:"farm_id" json:"farmId"`
	ShedID    string    `bson:"shed_id" json:"shedId"`
	ShedLabel string    `bson:"shed_label" json:"shedLabel"`
	StartDate string    `bson:"start_date" json:"startDate"`
	EndDate   string    `bson:"end_date" json:"endDate"`
	Totals    EggCounts `bson:"totals" json:"totals"`
	Total     int       `bson:"total" json:"total"`
	Days      int       `bson:"days" json:"days"`
	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
}
