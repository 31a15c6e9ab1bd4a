package messaging

import (
	"log"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/zhafed/richie/pkg/types"
)

// RabbitCourseMaster publishes catalog mutations so replica readers can
// follow the master index. It satisfies index.ChangeHandler.
type RabbitCourseMaster struct {
	RabbitConfig
	connection *amqp.Connection
}

func NewRabbitCourseMaster(cfg RabbitConfig) (*RabbitCourseMaster, error) {
	ret := &RabbitCourseMaster{RabbitConfig: cfg}
	if err := ret.connect(); err != nil {
		return nil, err
	}
	return ret, nil
}

func (m *RabbitCourseMaster) connect() error {
	conn, err := amqp.DialConfig(m.Url, amqp.Config{
		Vhost:      m.VHost,
		Properties: amqp.NewConnectionProperties(),
	})
	if err != nil {
		return &types.UpstreamUnavailable{Op: "rabbitmq connect", Err: err}
	}
	m.connection = conn
	ch, err := conn.Channel()
	if err != nil {
		return err
	}
	defer ch.Close()
	if err := CoursesUpserted.Declare(ch, m.Prefix); err != nil {
		return err
	}
	return CourseDeleted.Declare(ch, m.Prefix)
}

func (m *RabbitCourseMaster) Close() error {
	if m.connection == nil {
		return nil
	}
	return m.connection.Close()
}

func (m *RabbitCourseMaster) CoursesUpserted(courses []*types.Course) {
	if len(courses) == 0 {
		return
	}
	if err := Publish(m.connection, m.Prefix, CoursesUpserted, courses); err != nil {
		log.Printf("Failed to send course upserts: %v", err)
		return
	}
	log.Printf("Courses changed %d", len(courses))
}

func (m *RabbitCourseMaster) CourseDeleted(id string) {
	if err := Publish(m.connection, m.Prefix, CourseDeleted, id); err != nil {
		log.Printf("Failed to send course deleted: %v", err)
		return
	}
	log.Printf("Course deleted %s", id)
}
