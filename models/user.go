package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type User struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ParentEmail   string             `bson:"parent_email" json:"parentEmail"`
	ParentName    string             `bson:"parent_name" json:"parentName"`
	ChildName     string             `bson:"child_name" json:"childName"`
	ChildAge      int                `bson:"child_age" json:"childAge"`
	ChildStandard string             `bson:"child_standard,omitempty" json:"childStandard,omitempty"`
	PasswordHash  string             `bson:"password_hash" json:"-"`
	CreatedAt     time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt     time.Time          `bson:"updated_at" json:"updatedAt"`
}

type RegisterRequest struct {
	ParentEmail   string `json:"parentEmail" binding:"required,email"`
	ParentName    string `json:"parentName" binding:"required,min=2,max=100"`
	ChildName     string `json:"childName" binding:"required,min=1,max=100"`
	ChildAge      int    `json:"childAge" binding:"required,min=1,max=17"`
	ChildStandard string `json:"childStandard" binding:"max=50"`
	Password      string `json:"password" binding:"required,min=8,max=128"`
}

type LoginRequest struct {
	ParentEmail string `json:"parentEmail" binding:"required,email"`
	Password    string `json:"password" binding:"required,min=8"`
}

type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	User      User      `json:"user"`
}
