package domain

import (
	"time"

	"brokerage/pkg/cpf"
	"brokerage/pkg/dates"
	dErrors "brokerage/pkg/domain-errors"
	"brokerage/pkg/email"
)

// Client is the insured party. Identity key is the national ID (CPF), stored
// in its canonical digits-only form. A client is immutable once validated;
// updates are the concern of the outer layers, never of this core.
type Client struct {
	NationalID string
	Name       string
	BirthDate  string // DD/MM/YYYY
	Address    string
	Phone      string
	Email      string
}

// NewClient normalizes the national ID and validates every field, returning
// the first failure as a coded error. now anchors the birth-date check.
func NewClient(nationalID, name, birthDate, address, phone, emailAddr string, now time.Time) (*Client, error) {
	c := &Client{
		NationalID: cpf.Normalize(nationalID),
		Name:       name,
		BirthDate:  birthDate,
		Address:    address,
		Phone:      phone,
		Email:      emailAddr,
	}
	if err := c.Validate(now); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate re-runs the registration checks. Callers reconstructing a client
// from storage may skip it; records are trusted once persisted.
func (c *Client) Validate(now time.Time) error {
	if !cpf.IsValid(c.NationalID) {
		return dErrors.New(dErrors.CodeInvalidNationalID, "national ID failed checksum validation: "+c.NationalID)
	}
	if !email.IsValid(c.Email) {
		return dErrors.New(dErrors.CodeInvalidEmail, "invalid email format: "+c.Email)
	}
	born, err := dates.Parse(c.BirthDate)
	if err != nil {
		return dErrors.New(dErrors.CodeInvalidDate, "invalid birth date, expected DD/MM/YYYY: "+c.BirthDate)
	}
	if dates.IsTodayOrFuture(born, now) {
		return dErrors.New(dErrors.CodeFutureDate, "birth date cannot be today or in the future: "+c.BirthDate)
	}
	return nil
}

// ClientRecord is the flat serialization exchanged with the storage layer.
type ClientRecord struct {
	NationalID string `json:"national_id"`
	Name       string `json:"name"`
	BirthDate  string `json:"birth_date"`
	Address    string `json:"address"`
	Phone      string `json:"phone"`
	Email      string `json:"email"`
}

func (c *Client) ToRecord() ClientRecord {
	return ClientRecord{
		NationalID: c.NationalID,
		Name:       c.Name,
		BirthDate:  c.BirthDate,
		Address:    c.Address,
		Phone:      c.Phone,
		Email:      c.Email,
	}
}

// ClientFromRecord reconstructs a client without re-validating; storage is
// trusted to hold only records that passed registration.
func ClientFromRecord(rec ClientRecord) *Client {
	return &Client{
		NationalID: rec.NationalID,
		Name:       rec.Name,
		BirthDate:  rec.BirthDate,
		Address:    rec.Address,
		Phone:      rec.Phone,
		Email:      rec.Email,
	}
}
