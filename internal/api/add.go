package api

import (
	"fmt"
	"log/slog"
	"math"
	"net/http"

	"github.com/cakedek/myitemlibrary/internal/model"
	"github.com/cakedek/myitemlibrary/internal/roster"
	"github.com/cakedek/myitemlibrary/internal/store"
	"github.com/cakedek/myitemlibrary/internal/validate"
)

// AddHandler creates item records for one player, every known player, or
// every online player.
type AddHandler struct {
	Store  store.Store
	Roster roster.Roster
}

type addItemRequest struct {
	ItemName    *string `json:"item_name"`
	ItemDisplay *string `json:"item_display"`
	Description *string `json:"description"`
	Player      *string `json:"player"`
	Command     *string `json:"command"`
	Used        *int64  `json:"used"`
}

type requiredField struct {
	name  string
	value *string
}

// item checks that the required fields are present and returns the
// sanitized record. The player field is only read when withPlayer is set.
func (req *addItemRequest) item(withPlayer bool) (model.Item, error) {
	fields := []requiredField{
		{"item_name", req.ItemName},
		{"item_display", req.ItemDisplay},
		{"description", req.Description},
		{"command", req.Command},
	}
	if withPlayer {
		fields = append(fields, requiredField{"player", req.Player})
	}
	for _, f := range fields {
		if f.value == nil {
			return model.Item{}, &validate.FieldError{Field: f.name, Message: "is required"}
		}
	}
	if req.Used == nil {
		return model.Item{}, &validate.FieldError{Field: "used", Message: "is required"}
	}

	item := model.Item{
		ItemName:    validate.Sanitize(*req.ItemName),
		ItemDisplay: validate.Sanitize(*req.ItemDisplay),
		Description: validate.Sanitize(*req.Description),
		Enabled:     true,
		Command:     validate.Sanitize(*req.Command),
		Used:        validate.ClampInt(int(*req.Used), 0, math.MaxInt32),
	}
	if withPlayer {
		item.Player = validate.Sanitize(*req.Player)
	}
	return item, nil
}

func tooLong(field string) error {
	return &validate.FieldError{
		Field:   field,
		Message: fmt.Sprintf("is too long (max %d characters)", validate.MaxStringLength),
	}
}

// checkNameLengths bounds the name and display fields.
func checkNameLengths(item model.Item) error {
	if validate.Length(item.ItemName) > validate.MaxStringLength {
		return tooLong("item_name")
	}
	if validate.Length(item.ItemDisplay) > validate.MaxStringLength {
		return tooLong("item_display")
	}
	return nil
}

func (h *AddHandler) decode(w http.ResponseWriter, r *http.Request, withPlayer bool) (model.Item, bool) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return model.Item{}, false
	}

	var req addItemRequest
	if err := decodeJSON(r, &req); err != nil {
		decodeFailed(w, err)
		return model.Item{}, false
	}

	item, err := req.item(withPlayer)
	if err != nil {
		badRequest(w, err.Error())
		return model.Item{}, false
	}
	if err := checkNameLengths(item); err != nil {
		badRequest(w, err.Error())
		return model.Item{}, false
	}
	return item, true
}

// Add handles POST /add-item. Empty strings are accepted.
func (h *AddHandler) Add(w http.ResponseWriter, r *http.Request) {
	item, ok := h.decode(w, r, true)
	if !ok {
		return
	}
	if validate.Length(item.Player) > validate.MaxStringLength {
		badRequest(w, tooLong("player").Error())
		return
	}

	id, err := h.Store.CreateItem(r.Context(), item)
	if err != nil {
		internalError(w, r, "failed to add item", err)
		return
	}

	slog.Info("item added", "id", id, "player", item.Player)
	sendResponse(w, http.StatusOK, "Item added successfully")
}

// AddAll handles POST /add-item-all. Every text field must be non-empty.
func (h *AddHandler) AddAll(w http.ResponseWriter, r *http.Request) {
	item, ok := h.decode(w, r, false)
	if !ok {
		return
	}

	nonEmpty := []struct{ name, value string }{
		{"item_name", item.ItemName},
		{"item_display", item.ItemDisplay},
		{"description", item.Description},
		{"command", item.Command},
	}
	for _, f := range nonEmpty {
		if f.value == "" {
			badRequest(w, (&validate.FieldError{Field: f.name, Message: "cannot be empty"}).Error())
			return
		}
	}

	players, err := h.Store.DistinctPlayers(r.Context())
	if err != nil {
		internalError(w, r, "failed to list players", err)
		return
	}

	n, err := h.Store.CreateItemForPlayers(r.Context(), item, players)
	if err != nil {
		internalError(w, r, "failed to add item for all players", err)
		return
	}

	slog.Info("item added for all players", "item", item.ItemName, "count", n)
	sendResponse(w, http.StatusOK, fmt.Sprintf("Item added for %d players", n))
}

// AddOnline handles POST /add-item-online.
func (h *AddHandler) AddOnline(w http.ResponseWriter, r *http.Request) {
	item, ok := h.decode(w, r, false)
	if !ok {
		return
	}

	var players []string
	if h.Roster != nil {
		var err error
		players, err = h.Roster.Online(r.Context())
		if err != nil {
			internalError(w, r, "failed to list online players", err)
			return
		}
	}

	n, err := h.Store.CreateItemForPlayers(r.Context(), item, players)
	if err != nil {
		internalError(w, r, "failed to add item for online players", err)
		return
	}

	slog.Info("item added for online players", "item", item.ItemName, "count", n)
	sendResponse(w, http.StatusOK, "Item added for all online players")
}
