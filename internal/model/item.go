package model

import "strings"

// PlayerPlaceholder is the only substitution point allowed in a command template.
const PlayerPlaceholder = "<player>"

// Item is a grantable reward record owned by a single player.
type Item struct {
	ID          int64  `json:"id" gorm:"column:id;primaryKey;autoIncrement"`
	ItemName    string `json:"item_name" gorm:"column:item_name;type:varchar(255)"`
	ItemDisplay string `json:"item_display" gorm:"column:item_display;type:varchar(255)"`
	Description string `json:"description" gorm:"column:description;type:text"`
	Player      string `json:"player" gorm:"column:player;type:varchar(255);index"`
	Enabled     bool   `json:"enabled" gorm:"column:enabled;not null"`
	Command     string `json:"command" gorm:"column:command;type:text"`
	// Used counts remaining uses. Claims decrement it.
	Used int `json:"used" gorm:"column:used;not null;default:0"`
}

// TableName keeps the table name shared with the SQLite schema.
func (Item) TableName() string { return "co_list_item" }

// RenderCommand substitutes the placeholder with the given player name.
func (i *Item) RenderCommand(player string) string {
	return strings.ReplaceAll(i.Command, PlayerPlaceholder, player)
}
