package domain

import "time"

// Reservation is one booking of the shared calendar over [StartTime, EndTime).
type Reservation struct {
	ID          uint   `gorm:"primaryKey"`
	Title       string `gorm:"not null"`
	Description *string
	StartTime   time.Time `gorm:"not null;index"`
	EndTime     time.Time `gorm:"not null;index;check:end_time > start_time"`
	OwnerID     uint      `gorm:"not null;index"`
	Owner       *User     `gorm:"foreignKey:OwnerID;constraint:OnDelete:RESTRICT"`
	CreatedAt   time.Time `gorm:"not null"`
}

func (r Reservation) Interval() Interval {
	return Interval{Start: r.StartTime, End: r.EndTime}
}
