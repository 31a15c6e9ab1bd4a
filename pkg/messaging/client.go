package messaging

import (
	"encoding/json"
	"log"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/zhafed/richie/pkg/common"
	"github.com/zhafed/richie/pkg/index"
	"github.com/zhafed/richie/pkg/types"
)

const upsertChunkSize = 200

// RabbitCourseClient applies catalog mutations published by the master to a
// local replica index. Upserts are batched so a burst of messages results in
// a small number of index writes.
type RabbitCourseClient struct {
	RabbitConfig
	Index      *index.CourseIndex
	connection *amqp.Connection
	upserts    *common.QueueHandler[*types.Course]
}

func NewRabbitCourseClient(cfg RabbitConfig, idx *index.CourseIndex) *RabbitCourseClient {
	client := &RabbitCourseClient{
		RabbitConfig: cfg,
		Index:        idx,
	}
	client.upserts = common.NewQueueHandler(func(courses []*types.Course) {
		idx.UpsertCourses(courses)
		log.Printf("Applied %d course upserts", len(courses))
	}, upsertChunkSize)
	return client
}

func (c *RabbitCourseClient) Connect() error {
	conn, err := amqp.DialConfig(c.Url, amqp.Config{
		Vhost:      c.VHost,
		Properties: amqp.NewConnectionProperties(),
	})
	if err != nil {
		return &types.UpstreamUnavailable{Op: "rabbitmq connect", Err: err}
	}
	c.connection = conn

	ch, err := conn.Channel()
	if err != nil {
		return err
	}
	if err := CoursesUpserted.Listen(ch, c.Prefix, c.handleUpserted); err != nil {
		return err
	}

	ch, err = conn.Channel()
	if err != nil {
		return err
	}
	if err := CourseDeleted.Listen(ch, c.Prefix, c.handleDeleted); err != nil {
		return err
	}

	log.Printf("Listening for course changes")
	return nil
}

func (c *RabbitCourseClient) Close() error {
	c.upserts.Stop()
	if c.connection == nil {
		return nil
	}
	return c.connection.Close()
}

func (c *RabbitCourseClient) handleUpserted(d amqp.Delivery) error {
	var courses []*types.Course
	if err := json.Unmarshal(d.Body, &courses); err != nil {
		log.Printf("Failed to unmarshal upsert message %v", err)
		return nil
	}
	log.Printf("Got upserts %d", len(courses))
	c.upserts.Add(courses...)
	return nil
}

func (c *RabbitCourseClient) handleDeleted(d amqp.Delivery) error {
	var id string
	if err := json.Unmarshal(d.Body, &id); err != nil {
		log.Printf("Failed to unmarshal delete message %v", err)
		return nil
	}
	c.Index.DeleteCourse(id)
	return nil
}
