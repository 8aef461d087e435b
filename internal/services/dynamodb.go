package services

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"seongsu-popup-collector/internal/models"
)

// PublishedEvent is the registry row recording that an event has been
// posted to the CMS. The event ID is the deterministic hash of title, start
// date, and place, so re-runs find the same row.
type PublishedEvent struct {
	EventID     string    `dynamodbav:"event_id" json:"event_id"`
	Title       string    `dynamodbav:"title" json:"title"`
	StartDate   string    `dynamodbav:"start_date" json:"start_date"`
	Place       string    `dynamodbav:"place" json:"place"`
	PostID      int       `dynamodbav:"post_id" json:"post_id"`
	PublishedAt time.Time `dynamodbav:"published_at" json:"published_at"`
}

// EventRegistry tracks which events have already been published, keyed by
// the deterministic event ID.
type EventRegistry struct {
	client    *dynamodb.Client
	tableName string
}

// NewEventRegistry creates a registry backed by the given table
func NewEventRegistry(client *dynamodb.Client, tableName string) *EventRegistry {
	return &EventRegistry{
		client:    client,
		tableName: tableName,
	}
}

// RecordPublished stores the fact that an event was published as a post
func (r *EventRegistry) RecordPublished(ctx context.Context, event *models.Event, postID int) error {
	startDate := ""
	if event.Period.HasStart() {
		startDate = event.Period.StartDate.Format("2006-01-02")
	}

	row := PublishedEvent{
		EventID:     event.EventID(),
		Title:       event.Title,
		StartDate:   startDate,
		Place:       event.Location.Place,
		PostID:      postID,
		PublishedAt: time.Now(),
	}

	item, err := attributevalue.MarshalMap(row)
	if err != nil {
		return fmt.Errorf("failed to marshal published event: %w", err)
	}

	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("failed to record published event: %w", err)
	}

	return nil
}

// IsPublished reports whether the event already has a registry row
func (r *EventRegistry) IsPublished(ctx context.Context, event *models.Event) (bool, error) {
	result, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"event_id": &types.AttributeValueMemberS{Value: event.EventID()},
		},
	})
	if err != nil {
		return false, fmt.Errorf("failed to query event registry: %w", err)
	}

	return result.Item != nil, nil
}

// GetPublishedEvent retrieves the registry row for an event ID, or nil when
// the event has not been published.
func (r *EventRegistry) GetPublishedEvent(ctx context.Context, eventID string) (*PublishedEvent, error) {
	result, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"event_id": &types.AttributeValueMemberS{Value: eventID},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get published event: %w", err)
	}
	if result.Item == nil {
		return nil, nil
	}

	var row PublishedEvent
	if err := attributevalue.UnmarshalMap(result.Item, &row); err != nil {
		return nil, fmt.Errorf("failed to unmarshal published event: %w", err)
	}

	return &row, nil
}
