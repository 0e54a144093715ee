package models

import "time"

const (
	RoleAdmin = "admin"
	RoleStaff = "staff"
)

// User พนักงาน/ผู้ดูแล key ด้วย uid จาก identity provider
type User struct {
	UID       string    `bson:"_id" json:"uid"`
	Email     string    `bson:"email" json:"email"`
	Name      string    `bson:"name" json:"name"`
	PhotoURL  string    `bson:"photoURL" json:"photoURL"`
	Role      string    `bson:"role" json:"role"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
}

// Identity ข้อมูลผู้ใช้ที่ได้จาก Google
type Identity struct {
	UID         string `json:"uid"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
	PhotoURL    string `json:"photoURL"`
}
