// Package httpapi is the presentation-facing surface: thin fiber
// handlers that read from and dispatch into the state containers. No
// state lives here.
package httpapi

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/skydeck/skydeck/internal/state"
	"github.com/skydeck/skydeck/internal/view"
	"github.com/skydeck/skydeck/internal/weather"
)

var validate = validator.New()

// SyncPolicy is the facade's view of the synchronization policy.
type SyncPolicy interface {
	RefreshAll(ctx context.Context) error
	Status() (lastSync int64, online bool)
}

// Gateway is the facade's view of the remote data gateway.
type Gateway interface {
	FetchByName(ctx context.Context, name string) (weather.Record, error)
	SearchPlaces(ctx context.Context, query string) []weather.Place
}

// Deps bundles everything the handlers dispatch into.
type Deps struct {
	Weather   *state.Weather
	Favorites *state.Favorites
	Notes     *state.Notes
	Location  *state.Location
	Sync      SyncPolicy
	Gateway   Gateway
}

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, d Deps) {
	v1 := app.Group("/api/v1")

	v1.Get("/cities", func(c *fiber.Ctx) error {
		sorted := view.SortForDisplay(d.Weather.All(), d.Favorites.IDs())
		return c.JSON(fiber.Map{
			"cities":    sorted,
			"favorites": d.Favorites.IDs(),
		})
	})

	v1.Post("/cities", func(c *fiber.Ctx) error {
		var req addCityRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}
		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		rec, err := d.Gateway.FetchByName(c.Context(), req.Name)
		if err != nil {
			return asHTTPError("add city", err)
		}
		d.Weather.Upsert(rec)
		return c.Status(fiber.StatusCreated).JSON(rec)
	})

	v1.Delete("/cities/:id", func(c *fiber.Ctx) error {
		d.Weather.Remove(c.Params("id"))
		return c.SendStatus(fiber.StatusNoContent)
	})

	v1.Post("/cities/:id/refresh", func(c *fiber.Ctx) error {
		rec, err := d.Weather.RefreshOne(c.Context(), c.Params("id"))
		if err != nil {
			return asHTTPError("refresh city", err)
		}
		return c.JSON(rec)
	})

	v1.Get("/search", func(c *fiber.Ctx) error {
		places := d.Gateway.SearchPlaces(c.Context(), c.Query("q"))
		return c.JSON(fiber.Map{"results": places})
	})

	v1.Post("/favorites/:id/toggle", func(c *fiber.Ctx) error {
		id := c.Params("id")
		return c.JSON(fiber.Map{
			"id":       id,
			"favorite": d.Favorites.Toggle(id),
		})
	})

	v1.Get("/notes", func(c *fiber.Ctx) error {
		return c.JSON(d.Notes.All())
	})

	v1.Put("/notes/:id", func(c *fiber.Ctx) error {
		var req noteRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}
		// An explicitly saved empty note is stored as-is.
		d.Notes.Save(c.Params("id"), req.Text)
		return c.SendStatus(fiber.StatusNoContent)
	})

	v1.Delete("/notes/:id", func(c *fiber.Ctx) error {
		d.Notes.Delete(c.Params("id"))
		return c.SendStatus(fiber.StatusNoContent)
	})

	v1.Get("/location", func(c *fiber.Ctx) error {
		return c.JSON(d.Location.Snapshot())
	})

	v1.Post("/location/refresh", func(c *fiber.Ctx) error {
		// Failures surface in the snapshot, not as an HTTP error.
		return c.JSON(d.Location.RequestLocation(c.Context()))
	})

	v1.Delete("/location", func(c *fiber.Ctx) error {
		d.Location.Clear()
		return c.SendStatus(fiber.StatusNoContent)
	})

	v1.Get("/sync", func(c *fiber.Ctx) error {
		last, online := d.Sync.Status()
		return c.JSON(fiber.Map{
			"lastSync": last,
			"online":   online,
		})
	})

	v1.Post("/sync/refresh", func(c *fiber.Ctx) error {
		// Refreshing every city costs real upstream quota; the caller
		// must confirm explicitly.
		if c.Query("confirm") != "true" {
			return fiber.NewError(fiber.StatusBadRequest, "refresh all requires confirm=true")
		}
		if err := d.Sync.RefreshAll(c.Context()); err != nil {
			return asHTTPError("refresh all", err)
		}
		last, online := d.Sync.Status()
		return c.JSON(fiber.Map{
			"lastSync": last,
			"online":   online,
		})
	})
}

type addCityRequest struct {
	Name string `json:"name" validate:"required"`
}

type noteRequest struct {
	Text string `json:"text"`
}

// asHTTPError translates the core's tagged error variants into user
// messages naming the failed action.
func asHTTPError(action string, err error) error {
	var (
		notFound *weather.NotFoundError
		network  *weather.NetworkError
		perm     *weather.PermissionError
	)
	switch {
	case errors.As(err, &notFound):
		return fiber.NewError(fiber.StatusNotFound, action+" failed: "+notFound.Error())
	case errors.As(err, &network):
		return fiber.NewError(fiber.StatusBadGateway, action+" failed: "+network.Error())
	case errors.As(err, &perm):
		return fiber.NewError(fiber.StatusForbidden, action+" failed: "+perm.Error())
	default:
		return fiber.NewError(fiber.StatusInternalServerError, action+" failed")
	}
}
