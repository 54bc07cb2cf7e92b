package controller

import (
	"fmt"
	"log"
	"net/http"
	"strings"

	"echo-vintage-ecard/models"
	"echo-vintage-ecard/repository"
	"echo-vintage-ecard/slots"
)

// PhotoFrameController handles HTTP requests for photo frames and their slots
type PhotoFrameController struct {
	repository repository.PhotoFrameRepositoryInterface
}

// NewPhotoFrameController creates a new PhotoFrameController
func NewPhotoFrameController(repo repository.PhotoFrameRepositoryInterface) *PhotoFrameController {
	return &PhotoFrameController{repository: repo}
}

// validateFrame checks the frame and normalises its slots in place
func validateFrame(f *models.PhotoFrame) error {
	f.Name = strings.TrimSpace(f.Name)
	if err := required("name", f.Name); err != nil {
		return err
	}
	if err := required("frameImageUrl", f.FrameImageURL); err != nil {
		return err
	}
	if err := nonNegative("pricePoints", f.PricePoints); err != nil {
		return err
	}
	f.Slots = slots.NormalizeAll(f.Slots)
	return nil
}

// List handles GET /admin/photo-frames
func (c *PhotoFrameController) List(w http.ResponseWriter, r *http.Request) {
	c.list(w, r, false)
}

// ListActive handles GET /api/photo-frames
func (c *PhotoFrameController) ListActive(w http.ResponseWriter, r *http.Request) {
	c.list(w, r, true)
}

func (c *PhotoFrameController) list(w http.ResponseWriter, r *http.Request, activeOnly bool) {
	frames, err := c.repository.List(r.Context(), activeOnly)
	if err != nil {
		writeDomainError(w, "ListPhotoFrames", err)
		return
	}
	writeJSON(w, http.StatusOK, frames)
}

// Get handles GET /admin/photo-frames/{id}
func (c *PhotoFrameController) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	f, err := c.repository.GetByID(r.Context(), id)
	if err != nil {
		writeDomainError(w, "GetPhotoFrame", err)
		return
	}
	writeJSON(w, http.StatusOK, f)
}

// Create handles POST /admin/photo-frames
// Example request:
// {
//   "name": "Polaroid Duo",
//   "frameImageUrl": "https://.../polaroid.png",
//   "pricePoints": 20,
//   "slots": [{"x": 10, "y": 10, "width": 35, "height": 45}]
// }
// Slots without an id get one, and every slot is clamped into the frame.
func (c *PhotoFrameController) Create(w http.ResponseWriter, r *http.Request) {
	f := models.PhotoFrame{IsActive: true}
	if !decodeJSON(w, r, &f) {
		return
	}
	if err := validateFrame(&f); err != nil {
		writeDomainError(w, "CreatePhotoFrame", err)
		return
	}
	if err := c.repository.Create(r.Context(), &f); err != nil {
		writeDomainError(w, "CreatePhotoFrame", err)
		return
	}
	writeJSON(w, http.StatusCreated, f)
}

// Update handles PUT /admin/photo-frames/{id}
func (c *PhotoFrameController) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var f models.PhotoFrame
	if !decodeJSON(w, r, &f) {
		return
	}
	f.ID = id
	if err := validateFrame(&f); err != nil {
		writeDomainError(w, "UpdatePhotoFrame", err)
		return
	}
	if err := c.repository.Update(r.Context(), &f); err != nil {
		writeDomainError(w, "UpdatePhotoFrame", err)
		return
	}
	writeJSON(w, http.StatusOK, f)
}

// Delete handles DELETE /admin/photo-frames/{id}
// Frames used by any card are kept and 409 is returned.
func (c *PhotoFrameController) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := c.repository.Delete(r.Context(), id); err != nil {
		writeDomainError(w, "DeletePhotoFrame", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// editSlots loads the frame, applies edit to its slot list and stores the result
func (c *PhotoFrameController) editSlots(w http.ResponseWriter, r *http.Request, op string, edit func([]slots.Slot) ([]slots.Slot, error)) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	frame, err := c.repository.GetByID(r.Context(), id)
	if err != nil {
		writeDomainError(w, op, err)
		return
	}
	updated, err := edit(frame.Slots)
	if err != nil {
		writeDomainError(w, op, err)
		return
	}
	if err := c.repository.UpdateSlots(r.Context(), id, updated); err != nil {
		writeDomainError(w, op, err)
		return
	}
	frame.Slots = updated
	log.Printf("✅ %s: frame=%d, slots=%d", op, id, len(updated))
	writeJSON(w, http.StatusOK, frame)
}

// AddSlot handles POST /admin/photo-frames/{id}/slots
func (c *PhotoFrameController) AddSlot(w http.ResponseWriter, r *http.Request) {
	c.editSlots(w, r, "AddSlot", func(list []slots.Slot) ([]slots.Slot, error) {
		updated, _ := slots.Add(list)
		return updated, nil
	})
}

// RemoveSlot handles DELETE /admin/photo-frames/{id}/slots/{slotId}
func (c *PhotoFrameController) RemoveSlot(w http.ResponseWriter, r *http.Request) {
	slotID := r.PathValue("slotId")
	c.editSlots(w, r, "RemoveSlot", func(list []slots.Slot) ([]slots.Slot, error) {
		return slots.Remove(list, slotID)
	})
}

// SlotAction handles POST /admin/photo-frames/{id}/slots/{slotId}/{action}
// where action is move {dx, dy}, resize {handle, dx, dy}, rotate {pointerX, pointerY}
// or front (no body). Deltas and pointer positions are in frame percent.
func (c *PhotoFrameController) SlotAction(w http.ResponseWriter, r *http.Request) {
	slotID := r.PathValue("slotId")
	action := r.PathValue("action")

	var edit func(slots.Slot) (slots.Slot, error)
	switch action {
	case "move":
		var req models.SlotMoveRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		edit = func(s slots.Slot) (slots.Slot, error) { return slots.Move(s, req.DX, req.DY), nil }
	case "resize":
		var req models.SlotResizeRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		edit = func(s slots.Slot) (slots.Slot, error) { return slots.Resize(s, slots.Handle(req.Handle), req.DX, req.DY) }
	case "rotate":
		var req models.SlotRotateRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		edit = func(s slots.Slot) (slots.Slot, error) { return slots.Rotate(s, req.PointerX, req.PointerY), nil }
	case "front":
		c.editSlots(w, r, "BringSlotToFront", func(list []slots.Slot) ([]slots.Slot, error) {
			return slots.BringToFront(list, slotID)
		})
		return
	default:
		writeError(w, http.StatusNotFound, fmt.Sprintf("unknown slot action %q", action))
		return
	}

	c.editSlots(w, r, "SlotAction:"+action, func(list []slots.Slot) ([]slots.Slot, error) {
		return slots.Update(list, slotID, edit)
	})
}
