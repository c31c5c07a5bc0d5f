package domain

import "time"

// Trip is the persisted room a set of users chat in.
type Trip struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

// TripUser is one durable membership of a user in a trip.
type TripUser struct {
	ID        uint      `json:"id"`
	TripID    string    `json:"tripId"`
	UserID    string    `json:"userId"`
	CreatedAt time.Time `json:"createdAt"`
}

// TripSnapshot is a trip together with its members at read time.
type TripSnapshot struct {
	Trip
	TripUsers []TripUser `json:"tripUsers"`
}

// HasUser reports whether userID is a durable member of the trip.
func (s *TripSnapshot) HasUser(userID string) bool {
	for _, tu := range s.TripUsers {
		if tu.UserID == userID {
			return true
		}
	}
	return false
}

// CreateTripRequest represents a create trip request.
type CreateTripRequest struct {
	Name string `json:"name" binding:"required,min=1,max=200"`
}

// TripModel is the GORM model for the trips table.
type TripModel struct {
	ID        string          `gorm:"type:varchar(36);primaryKey"`
	Name      string          `gorm:"type:varchar(200);not null"`
	CreatedAt time.Time       `gorm:"autoCreateTime"`
	TripUsers []TripUserModel `gorm:"foreignKey:TripID;constraint:OnDelete:CASCADE"`
}

func (TripModel) TableName() string {
	return "trips"
}

// TripUserModel is the GORM model for the trip_users table. The composite
// unique index makes a repeated join of the same user a no-op.
type TripUserModel struct {
	ID        uint      `gorm:"primaryKey"`
	TripID    string    `gorm:"type:varchar(36);not null;uniqueIndex:idx_trip_user"`
	UserID    string    `gorm:"type:varchar(36);not null;uniqueIndex:idx_trip_user"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

func (TripUserModel) TableName() string {
	return "trip_users"
}

func (m *TripModel) ToDomain() *Trip {
	return &Trip{
		ID:        m.ID,
		Name:      m.Name,
		CreatedAt: m.CreatedAt,
	}
}

// ToSnapshot converts the model and its preloaded TripUsers.
func (m *TripModel) ToSnapshot() *TripSnapshot {
	users := make([]TripUser, len(m.TripUsers))
	for i, tu := range m.TripUsers {
		users[i] = TripUser{
			ID:        tu.ID,
			TripID:    tu.TripID,
			UserID:    tu.UserID,
			CreatedAt: tu.CreatedAt,
		}
	}
	return &TripSnapshot{
		Trip:      *m.ToDomain(),
		TripUsers: users,
	}
}
