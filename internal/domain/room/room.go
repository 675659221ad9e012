package room

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrRoomNameTaken = errors.New("a room with this name already exists")

type Room struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`

	Name string `gorm:"column:name;type:varchar(100);uniqueIndex;not null" json:"name"`
}

func (Room) TableName() string {
	return "clinical.rooms"
}
