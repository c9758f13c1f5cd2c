package google

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/harrisonrobin/gravity/pkg/catalog"
	"github.com/harrisonrobin/gravity/pkg/index"
	"github.com/harrisonrobin/gravity/pkg/model"
	"github.com/harrisonrobin/gravity/pkg/timeline"
	"github.com/harrisonrobin/gravity/pkg/util"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"
)

// CalendarClient lays execution plans onto a Google Calendar.
type CalendarClient struct {
	srv        *calendar.Service
	calendarID string
	index      *index.EventIndex
	catalog    *catalog.Catalog
	planner    *timeline.Planner
}

// NewCalendarClient creates a new Google Calendar client.
func NewCalendarClient(srv *calendar.Service, calendarID string, idx *index.EventIndex, cat *catalog.Catalog) *CalendarClient {
	return &CalendarClient{
		srv:        srv,
		calendarID: calendarID,
		index:      idx,
		catalog:    cat,
		planner:    timeline.NewPlanner(cat),
	}
}

// SyncPlan writes each segment of active's plan as an event, back to back from start.
// Events left over from earlier pushes whose segments are no longer planned are deleted.
func (c *CalendarClient) SyncPlan(active model.Task, plan []timeline.Segment, start time.Time) ([]*calendar.Event, error) {
	slots := util.LayoutPlan(active, plan, c.planner, start)
	current := make(map[string]bool, len(slots))

	var events []*calendar.Event
	for _, slot := range slots {
		current[slot.Key] = true
		event, err := c.syncSlot(active, slot)
		if err != nil {
			return events, fmt.Errorf("segment %s: %w", slot.Key, err)
		}
		events = append(events, event)
	}

	if c.index != nil {
		for _, key := range c.index.Keys() {
			if current[key] {
				continue
			}
			if err := c.DeleteEvent(c.index.Get(key)); err != nil && !isGone(err) {
				log.Printf("Sync: error deleting stale event for %s: %v", key, err)
				continue
			}
			c.index.Remove(key)
		}
	}
	return events, nil
}

func (c *CalendarClient) syncSlot(active model.Task, slot util.Slot) (*calendar.Event, error) {
	event, err := util.ConvertSlotToCalendarEvent(active, slot, c.catalog)
	if err != nil {
		return nil, err
	}

	var existing *calendar.Event
	if c.index != nil {
		if eventID := c.index.Get(slot.Key); eventID != "" {
			existing, err = c.srv.Events.Get(c.calendarID, eventID).Do()
			if err != nil || existing.Status == "cancelled" {
				existing = nil
			}
		}
	}
	if existing == nil {
		existing, err = c.GetEventBySegmentKey(slot.Key)
		if err != nil {
			return nil, fmt.Errorf("error searching for event: %w", err)
		}
	}

	if existing != nil {
		patch, err := util.EventNeedsUpdate(existing, event)
		if err != nil {
			log.Printf("could not compare segment %s with its calendar event: %v", slot.Key, err)
			return nil, err
		}
		if patch == nil {
			c.remember(slot.Key, existing.Id)
			return existing, nil
		}
		updated, err := c.PatchEvent(existing.Id, patch)
		if err != nil {
			return nil, err
		}
		c.remember(slot.Key, updated.Id)
		return updated, nil
	}

	created, err := c.srv.Events.Insert(c.calendarID, event).Do()
	if err != nil {
		return nil, err
	}
	c.remember(slot.Key, created.Id)
	return created, nil
}

func (c *CalendarClient) remember(key, eventID string) {
	if c.index != nil {
		c.index.Set(key, eventID)
	}
}

// PatchEvent performs a partial update on an event.
func (c *CalendarClient) PatchEvent(eventID string, patch *calendar.Event) (*calendar.Event, error) {
	return c.srv.Events.Patch(c.calendarID, eventID, patch).Do()
}

// DeleteEvent deletes an event from the calendar.
func (c *CalendarClient) DeleteEvent(eventID string) error {
	return c.srv.Events.Delete(c.calendarID, eventID).Do()
}

// GetEventBySegmentKey searches for the event carrying the given segment key in its extended properties.
func (c *CalendarClient) GetEventBySegmentKey(key string) (*calendar.Event, error) {
	events, err := c.srv.Events.List(c.calendarID).
		PrivateExtendedProperty(fmt.Sprintf("%s=%s", util.SegmentProperty, key)).
		Do()
	if err != nil {
		return nil, err
	}
	if len(events.Items) > 0 {
		return events.Items[0], nil
	}
	return nil, nil
}

// isGone reports whether the API refused a delete because the event no longer exists.
func isGone(err error) bool {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return apiErr.Code == http.StatusNotFound || apiErr.Code == http.StatusGone
	}
	return false
}
