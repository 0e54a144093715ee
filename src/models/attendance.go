package models

import (
	"time"
)

// DateLayout รูปแบบวันที่ที่ใช้เก็บใน field date
const DateLayout = "2006-01-02"

// Location ตำแหน่งที่ได้จากการ reverse geocode ตอนเข้า/ออกงาน
type Location struct {
	Lat  float64 `bson:"lat" json:"lat"`
	Lng  float64 `bson:"lng" json:"lng"`
	City string  `bson:"city" json:"city"`
	Area string  `bson:"area" json:"area"`
}

// AttendanceRecord หนึ่ง session การเข้างาน (clock-in ถึง clock-out)
type AttendanceRecord struct {
	ID              string     `bson:"-" json:"id"`
	UserID          string     `bson:"userId" json:"userId"`
	DisplayName     string     `bson:"name" json:"name"`
	Email           string     `bson:"email" json:"email"`
	Date            string     `bson:"date" json:"date"`
	TimeIn          *time.Time `bson:"timeIn" json:"timeIn"`
	TimeOut         *time.Time `bson:"timeOut" json:"timeOut"`
	LocationIn      *Location  `bson:"locationIn" json:"locationIn"`
	LocationOut     *Location  `bson:"locationOut" json:"locationOut"`
	OriginalTimeIn  *time.Time `bson:"originalTimeIn,omitempty" json:"originalTimeIn,omitempty"`
	OriginalTimeOut *time.Time `bson:"originalTimeOut,omitempty" json:"originalTimeOut,omitempty"`
	SplitID         string     `bson:"splitId,omitempty" json:"splitId,omitempty"`
	CreatedAt       time.Time  `bson:"createdAt" json:"createdAt"`
}

// IsOpen ยังไม่ได้ clock-out
func (r AttendanceRecord) IsOpen() bool {
	return r.TimeOut == nil
}

// RecordUpdate field ที่อนุญาตให้แก้ตอน clock-out (nil = ไม่แก้)
type RecordUpdate struct {
	TimeOut         *time.Time `json:"timeOut,omitempty"`
	LocationOut     *Location  `json:"locationOut,omitempty"`
	OriginalTimeOut *time.Time `json:"originalTimeOut,omitempty"`
	SplitID         string     `json:"splitId,omitempty"`
}

// Apply ใช้ update กับ record (ใช้ใน memory store และ test)
func (u RecordUpdate) Apply(r *AttendanceRecord) {
	if u.TimeOut != nil {
		t := *u.TimeOut
		r.TimeOut = &t
	}
	if u.LocationOut != nil {
		l := *u.LocationOut
		r.LocationOut = &l
	}
	if u.OriginalTimeOut != nil {
		t := *u.OriginalTimeOut
		r.OriginalTimeOut = &t
	}
	if u.SplitID != "" {
		r.SplitID = u.SplitID
	}
}

// SplitPlan การปิด session ที่ข้ามเที่ยงคืน: ปิด record เดิม แล้วสร้าง record ต่อเนื่องรายวัน
type SplitPlan struct {
	SplitID       string             `json:"splitId"`
	CloseID       string             `json:"closeId"`
	Close         RecordUpdate       `json:"close"`
	Continuations []AttendanceRecord `json:"continuations"`
}

// Place ผลจาก reverse geocode
type Place struct {
	City string `json:"city"`
	Area string `json:"area"`
}
