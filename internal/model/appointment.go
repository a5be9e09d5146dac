package model

import "time"

// Appointment is a scheduled patient visit (a citas row). Appointments
// reference the service catalog but are independent of treatments; booking
// a visit creates no billing rows.
type Appointment struct {
	ID            int64     `db:"id" json:"id"`
	PatientID     int64     `db:"patient_id" json:"patient_id"`
	ServiceID     int64     `db:"service_id" json:"service_id"`
	AppointmentAt time.Time `db:"appointment_at" json:"appointment_at"`
	Observaciones *string   `db:"observaciones" json:"observaciones"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}

// AppointmentView is an appointment joined with its service catalog name.
type AppointmentView struct {
	ID            int64     `db:"id" json:"id"`
	PatientID     int64     `db:"patient_id" json:"patient_id"`
	ServiceID     int64     `db:"service_id" json:"service_id"`
	AppointmentAt time.Time `db:"appointment_at" json:"appointment_at"`
	Tratamiento   *string   `db:"tratamiento" json:"tratamiento"`
	Observaciones *string   `db:"observaciones" json:"observaciones"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}

// SaveAppointmentRequest creates or fully replaces an appointment. Date and
// service are both required either way.
type SaveAppointmentRequest struct {
	AppointmentAt string  `json:"appointment_at" binding:"required"`
	ServiceID     int64   `json:"service_id" binding:"required"`
	Observaciones *string `json:"observaciones"`
}
