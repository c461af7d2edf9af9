package pathstore

import (
	"bytes"
	"errors"

	"backend-pathtracker/internal/auth"
	"backend-pathtracker/internal/codec"

	"github.com/gofiber/fiber/v2"
)

func RegisterRoutes(r fiber.Router, store Store, authMiddleware fiber.Handler) {
	r.Get("/", authMiddleware, func(c *fiber.Ctx) error {
		paths, err := store.ListAll(c.Context(), auth.TrackerID(c))
		if err != nil {
			return httpError(err)
		}
		out := make([]PathSummary, 0, len(paths))
		for _, p := range paths {
			summary := PathSummary{ID: p.ID, RecordedAt: p.RecordedAt}
			if decoded, err := p.Decode(); err == nil {
				summary.Points = len(decoded)
				summary.Valid = true
			}
			out = append(out, summary)
		}
		return c.JSON(out)
	})

	r.Get("/:id", authMiddleware, func(c *fiber.Ctx) error {
		p, err := store.Get(c.Context(), auth.TrackerID(c), c.Params("id"))
		if err != nil {
			return httpError(err)
		}
		path, err := p.Decode()
		if err != nil {
			return httpError(err)
		}
		return c.JSON(PathDetail{ID: p.ID, RecordedAt: p.RecordedAt, Coordinates: path})
	})

	r.Get("/:id/gpx", authMiddleware, func(c *fiber.Ctx) error {
		p, err := store.Get(c.Context(), auth.TrackerID(c), c.Params("id"))
		if err != nil {
			return httpError(err)
		}
		path, err := p.Decode()
		if err != nil {
			return httpError(err)
		}
		var buf bytes.Buffer
		if err := WriteGPX(&buf, p, path); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		c.Attachment(p.ID + ".gpx")
		c.Set(fiber.HeaderContentType, "application/gpx+xml")
		return c.Send(buf.Bytes())
	})

	r.Delete("/:id", authMiddleware, func(c *fiber.Ctx) error {
		if err := store.Delete(c.Context(), auth.TrackerID(c), c.Params("id")); err != nil {
			return httpError(err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	})
}

func httpError(err error) error {
	switch {
	case errors.Is(err, ErrNotFound):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	case errors.Is(err, codec.ErrDecode):
		return fiber.NewError(fiber.StatusUnprocessableEntity, err.Error())
	default:
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
}
