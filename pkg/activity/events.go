package activity

import (
	"strings"
	"time"
)

// Verbs emitted by the worksheet store.
const (
	VerbSectionUpdated = "booster.section.updated"
	VerbProductAdded   = "booster.product.added"
	VerbProductRemoved = "booster.product.removed"
	VerbProductUpdated = "booster.product.updated"
	VerbLeverUpdated   = "booster.lever.updated"
	VerbOfferUpdated   = "booster.offer.updated"
	VerbStateLoaded    = "booster.state.loaded"
	VerbStateReset     = "booster.state.reset"
	VerbStatePurged    = "booster.state.purged"
)

// Object types carried by worksheet events.
const (
	ObjectSection = "booster.section"
	ObjectProduct = "booster.product"
	ObjectLever   = "booster.lever"
	ObjectOffer   = "booster.offer"
	ObjectState   = "booster.state"
)

// ChangeInput describes the common fields of a worksheet change.
type ChangeInput struct {
	ActorID    string
	Section    string
	ObjectID   string
	Fields     []string
	SnapshotID string
	Metadata   map[string]any
	OccurredAt time.Time
}

// BuildSectionUpdatedEvent reports a patch applied to one section.
func BuildSectionUpdatedEvent(input ChangeInput) Event {
	if input.ObjectID == "" {
		input.ObjectID = input.Section
	}
	return buildChangeEvent(VerbSectionUpdated, ObjectSection, input)
}

// BuildProductAddedEvent reports a new product row.
func BuildProductAddedEvent(input ChangeInput) Event {
	return buildChangeEvent(VerbProductAdded, ObjectProduct, input)
}

// BuildProductRemovedEvent reports a removed product row.
func BuildProductRemovedEvent(input ChangeInput) Event {
	return buildChangeEvent(VerbProductRemoved, ObjectProduct, input)
}

// BuildProductUpdatedEvent reports a patch applied to one product row.
func BuildProductUpdatedEvent(input ChangeInput) Event {
	return buildChangeEvent(VerbProductUpdated, ObjectProduct, input)
}

// BuildLeverUpdatedEvent reports a patch applied to one growth lever.
func BuildLeverUpdatedEvent(input ChangeInput) Event {
	return buildChangeEvent(VerbLeverUpdated, ObjectLever, input)
}

// BuildOfferUpdatedEvent reports a patch applied to an offer block.
func BuildOfferUpdatedEvent(input ChangeInput) Event {
	return buildChangeEvent(VerbOfferUpdated, ObjectOffer, input)
}

// BuildStateEvent reports a whole-state lifecycle transition such as load,
// reset or purge.
func BuildStateEvent(verb string, input ChangeInput) Event {
	if input.ObjectID == "" {
		input.ObjectID = "state"
	}
	return buildChangeEvent(verb, ObjectState, input)
}

func buildChangeEvent(verb, objectType string, input ChangeInput) Event {
	metadata := cloneMap(input.Metadata)
	if input.SnapshotID != "" {
		metadata = ensureMetadata(metadata)
		metadata["snapshot_id"] = input.SnapshotID
	}
	if len(input.Fields) > 0 {
		metadata = ensureMetadata(metadata)
		metadata["fields"] = strings.Join(input.Fields, ",")
	}

	objectID := strings.TrimSpace(input.ObjectID)
	if objectID == "" {
		objectID = strings.TrimSpace(input.Section)
	}
	if objectID == "" {
		objectID = objectType
	}

	var fields []string
	if len(input.Fields) > 0 {
		fields = append([]string{}, input.Fields...)
	}

	return Event{
		Verb:       verb,
		ActorID:    strings.TrimSpace(input.ActorID),
		ObjectType: objectType,
		ObjectID:   objectID,
		Section:    strings.TrimSpace(input.Section),
		Fields:     fields,
		Metadata:   metadata,
		OccurredAt: input.OccurredAt,
	}
}

func ensureMetadata(meta map[string]any) map[string]any {
	if meta == nil {
		return map[string]any{}
	}
	return meta
}
