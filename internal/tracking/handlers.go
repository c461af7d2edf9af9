package tracking

import (
	"errors"
	"time"

	"backend-pathtracker/internal/auth"
	"backend-pathtracker/internal/shared/geo"

	"github.com/gofiber/fiber/v2"
)

type locationRequest struct {
	Latitude    *float64         `json:"latitude"`
	Longitude   *float64         `json:"longitude"`
	Coordinates []geo.Coordinate `json:"coordinates"`
}

func (r locationRequest) coordinates() ([]geo.Coordinate, error) {
	if len(r.Coordinates) > 0 {
		return r.Coordinates, nil
	}
	if r.Latitude == nil || r.Longitude == nil {
		return nil, errors.New("latitude and longitude required")
	}
	return []geo.Coordinate{{Latitude: *r.Latitude, Longitude: *r.Longitude}}, nil
}

type stopResponse struct {
	Saved      bool       `json:"saved"`
	PathID     string     `json:"path_id,omitempty"`
	RecordedAt *time.Time `json:"recorded_at,omitempty"`
	Points     int        `json:"points"`
	Status     Status     `json:"status"`
}

func RegisterRoutes(r fiber.Router, mgr *Manager, authMiddleware fiber.Handler) {
	r.Post("/start", authMiddleware, func(c *fiber.Ctx) error {
		s, err := session(mgr, c)
		if err != nil {
			return err
		}
		if err := s.Start(); err != nil {
			return fiber.NewError(fiber.StatusServiceUnavailable, err.Error())
		}
		return c.JSON(s.Status())
	})

	r.Post("/stop", authMiddleware, func(c *fiber.Ctx) error {
		s, err := session(mgr, c)
		if err != nil {
			return err
		}
		result, ok := s.Stop()
		if !ok {
			return c.JSON(stopResponse{Status: s.Status()})
		}

		select {
		case res := <-result:
			if res.Err != nil {
				return fiber.NewError(fiber.StatusInternalServerError, res.Err.Error())
			}
			recordedAt := res.Path.RecordedAt
			return c.Status(fiber.StatusCreated).JSON(stopResponse{
				Saved:      true,
				PathID:     res.Path.ID,
				RecordedAt: &recordedAt,
				Points:     res.Points,
				Status:     s.Status(),
			})
		case <-c.Context().Done():
			return fiber.NewError(fiber.StatusServiceUnavailable, "server shutting down")
		}
	})

	r.Post("/locations", authMiddleware, func(c *fiber.Ctx) error {
		var req locationRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		coords, err := req.coordinates()
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		for _, coord := range coords {
			if err := coord.Validate(); err != nil {
				return fiber.NewError(fiber.StatusBadRequest, err.Error())
			}
		}

		s, err := session(mgr, c)
		if err != nil {
			return err
		}
		for _, coord := range coords {
			if err := s.Deliver(coord); err != nil {
				return fiber.NewError(fiber.StatusServiceUnavailable, err.Error())
			}
		}
		return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
			"accepted": len(coords),
			"status":   s.Status(),
		})
	})

	r.Get("/status", authMiddleware, func(c *fiber.Ctx) error {
		s, err := session(mgr, c)
		if err != nil {
			return err
		}
		return c.JSON(s.Status())
	})
}

func session(mgr *Manager, c *fiber.Ctx) (*Session, error) {
	s, err := mgr.Session(auth.TrackerID(c))
	if err != nil {
		return nil, fiber.NewError(fiber.StatusServiceUnavailable, err.Error())
	}
	return s, nil
}
