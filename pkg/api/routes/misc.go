package routes

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/liip/sheriff"
	"github.com/travigo/itinerary/pkg/timetable"
	"github.com/travigo/itinerary/pkg/util"
)

// getReferenceTime reads the time query parameter as HH:MM:SS, defaulting to
// the current local time of day.
func getReferenceTime(c *fiber.Ctx) (timetable.Clock, error) {
	value := c.Query("time")
	if value == "" {
		return timetable.Clock(util.SecondsSinceMidnight(time.Now())), nil
	}

	ref, ok, err := timetable.ParseClock(value)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, errors.New("empty time")
	}

	return ref, nil
}

func getCount(c *fiber.Ctx, fallback int) (int, error) {
	count, err := strconv.Atoi(c.Query("count", strconv.Itoa(fallback)))
	if err != nil || count < 1 {
		return 0, errors.New("Parameter count should be a positive integer")
	}

	return count, nil
}

// reduce filters a response down to the basic fields unless detailed=true.
func reduce(c *fiber.Ctx, data interface{}) (interface{}, error) {
	groups := []string{"basic"}
	if strings.EqualFold(c.Query("detailed"), "true") {
		groups = []string{"detailed"}
	}

	return sheriff.Marshal(&sheriff.Options{
		Groups: groups,
	}, data)
}

func sendError(c *fiber.Ctx, status int, message string) error {
	c.Status(status)
	return c.JSON(fiber.Map{
		"error": message,
	})
}
