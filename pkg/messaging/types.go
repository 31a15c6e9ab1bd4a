package messaging

type ChangeTopic string

const (
	CoursesUpserted ChangeTopic = "course_upserted"
	CourseDeleted   ChangeTopic = "course_deleted"
)

type RabbitConfig struct {
	Url    string
	VHost  string
	Prefix string
}
