package models

import "gorm.io/gorm"

type ContactSubmission struct {
	gorm.Model
	Name      string
	Phone     string
	Email     string
	Subject   string
	Message   string
	PageURL   string
	UserAgent string
}
