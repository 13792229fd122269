package model

import (
	"time"

	"gorm.io/datatypes"
)

// UsageRecord is the database row of a usage entry.
type UsageRecord struct {
	ID           int64          `gorm:"primaryKey;autoIncrement" json:"id"`
	Timestamp    time.Time      `gorm:"not null;index:idx_usage_timestamp" json:"timestamp"`
	User         string         `gorm:"type:varchar(120)" json:"user"`
	Date         datatypes.Date `gorm:"index:idx_usage_date" json:"date"`
	Sheet        string         `gorm:"type:varchar(255);index:idx_usage_material" json:"sheet"`
	Material     string         `gorm:"type:varchar(255);index:idx_usage_material" json:"material"`
	Lot          string         `gorm:"type:varchar(64)" json:"lot"`
	Passage      *int           `json:"passage"`
	UsedTubeNo   *int           `json:"used_tube_no"`
	UsedQuantity float64        `gorm:"not null;default:1" json:"used_quantity"`
	Experiment   string         `gorm:"type:text" json:"experiment"`
	Type         string         `gorm:"type:varchar(32)" json:"type"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

func (*UsageRecord) TableName() string { return "usage_log" }

func optPtr(o OptInt) *int {
	if !o.Valid {
		return nil
	}
	v := o.V
	return &v
}

func ptrOpt(p *int) OptInt {
	if p == nil {
		return OptInt{}
	}
	return IntOf(*p)
}

func NewUsageRecord(e *UsageEntry) *UsageRecord {
	return &UsageRecord{
		ID:           e.Index,
		Timestamp:    e.Timestamp.Time,
		User:         e.User,
		Date:         datatypes.Date(e.Date.Time),
		Sheet:        e.Sheet,
		Material:     e.Material,
		Lot:          e.Lot,
		Passage:      optPtr(e.Passage),
		UsedTubeNo:   optPtr(e.UsedTubeNo),
		UsedQuantity: e.UsedQuantity,
		Experiment:   e.Experiment,
		Type:         e.Type,
	}
}

func (r *UsageRecord) Entry() *UsageEntry {
	e := &UsageEntry{
		Index:        r.ID,
		Timestamp:    DateTime{Time: r.Timestamp},
		User:         r.User,
		Sheet:        r.Sheet,
		Material:     r.Material,
		Lot:          r.Lot,
		Passage:      ptrOpt(r.Passage),
		UsedTubeNo:   ptrOpt(r.UsedTubeNo),
		UsedQuantity: r.UsedQuantity,
		Experiment:   r.Experiment,
		Type:         r.Type,
	}
	if d := time.Time(r.Date); !d.IsZero() {
		e.Date = DateOf(d)
	}
	return e
}
