package models

type UserRole string

// RoleOrganizer is the only role; viewers are anonymous.
const RoleOrganizer UserRole = "organizer"
