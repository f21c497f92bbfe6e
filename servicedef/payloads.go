// Package servicedef describes the JSON payloads exchanged with the users/todos service.
package servicedef

import (
	"fmt"
	"strconv"
)

type User struct {
	ID       int     `json:"id,omitempty"`
	Name     string  `json:"name"`
	Username string  `json:"username"`
	Email    string  `json:"email"`
	Address  Address `json:"address"`
	Phone    string  `json:"phone"`
	Website  string  `json:"website"`
	Company  Company `json:"company"`
}

type Address struct {
	Street  string `json:"street"`
	Suite   string `json:"suite"`
	City    string `json:"city"`
	Zipcode string `json:"zipcode"`
	Geo     Geo    `json:"geo"`
}

// Geo holds coordinates as the service sends them: decimal strings.
type Geo struct {
	Lat string `json:"lat"`
	Lng string `json:"lng"`
}

// Coordinates parses the latitude and longitude.
func (g Geo) Coordinates() (lat, lng float64, err error) {
	if lat, err = strconv.ParseFloat(g.Lat, 64); err != nil {
		return 0, 0, fmt.Errorf("invalid latitude %q: %w", g.Lat, err)
	}
	if lng, err = strconv.ParseFloat(g.Lng, 64); err != nil {
		return 0, 0, fmt.Errorf("invalid longitude %q: %w", g.Lng, err)
	}
	return lat, lng, nil
}

type Company struct {
	Name        string `json:"name"`
	CatchPhrase string `json:"catchPhrase"`
	BS          string `json:"bs"`
}

type Todo struct {
	ID        int    `json:"id,omitempty"`
	UserID    int    `json:"userId"`
	Title     string `json:"title"`
	Completed bool   `json:"completed"`
}
