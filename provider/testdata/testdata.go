// Package testdata holds fixture types for the Go source provider
// tests.
package testdata

import "time"

// Status is an account lifecycle state.
type Status string

const (
	StatusActive    Status = "active"
	StatusSuspended Status = "suspended"
	StatusClosed    Status = "closed"
)

// Priority orders work items.
type Priority int

const (
	Low Priority = iota
	Medium
	High
)

// Address is a postal address.
type Address struct {
	Street string `json:"street"`
	City   string `json:"city"`
	Zip    string `json:"zip,omitempty"`
}

// Account exercises scalars, struct tags, optionality, hidden fields,
// and references to other named types.
type Account struct {
	ID int64 `json:"id"`
	// DisplayName is shown in place of the login name.
	DisplayName string `json:"display_name"`
	// Nickname is the legacy short name.
	//
	// Deprecated: use DisplayName.
	Nickname string         `json:"nickname,omitempty"`
	Balance  float64        `json:"balance"`
	Active   bool           `json:"active"`
	Tags     []string       `json:"tags"`
	Avatar   []byte         `json:"avatar,omitempty"`
	Address  *Address       `json:"address,omitempty"`
	Status   Status         `json:"status"`
	Created  time.Time      `json:"created"`
	TTL      time.Duration  `json:"ttl"`
	Counts   map[string]int `json:"counts"`
	Internal string         `json:"-"`
	secret   string
}

// Person is an embedding base.
type Person struct {
	Name string `json:"name"`
	Age  int    `json:"age,omitempty"`
}

// Employee extends Person with a badge number.
type Employee struct {
	Person
	Badge string `json:"badge"`
}

// Node is a self-referential list node.
type Node struct {
	Value string `json:"value"`
	Next  *Node  `json:"next,omitempty"`
}

// Settings exercises dynamic maps.
type Settings struct {
	Flags map[string]bool `json:"flags"`
	Extra map[string]any  `json:"extra,omitempty"`
}
