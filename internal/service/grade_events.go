package service

import (
	"encoding/json"
	"strings"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
)

// GradeChangeSubject is the default NATS subject for recomputed grades.
const GradeChangeSubject = "gradebook.grades.recomputed"

// NATSPublisher announces committed grade changes.
type NATSPublisher struct {
	conn    *nats.Conn
	subject string
	logger  zerolog.Logger
}

// NewNATSPublisher returns nil when conn is nil.
func NewNATSPublisher(conn *nats.Conn, subject string, logger zerolog.Logger) *NATSPublisher {
	if conn == nil {
		return nil
	}
	subject = strings.TrimSpace(subject)
	if subject == "" {
		subject = GradeChangeSubject
	}
	return &NATSPublisher{
		conn:    conn,
		subject: subject,
		logger:  logger.With().Str("component", "grade_publisher").Logger(),
	}
}

// Subject reports where changes are published.
func (p *NATSPublisher) Subject() string {
	if p == nil {
		return ""
	}
	return p.subject
}

func (p *NATSPublisher) publish(changes []GradeChange) {
	if p == nil {
		return
	}
	for _, change := range changes {
		payload, err := json.Marshal(change)
		if err != nil {
			p.logger.Warn().Err(err).Msg("failed to encode grade change")
			continue
		}
		if err := p.conn.Publish(p.subject, payload); err != nil {
			p.logger.Warn().
				Err(err).
				Uint("student_id", change.StudentID).
				Uint("class_id", change.ClassID).
				Msg("failed to publish grade change")
		}
	}
}
