package store

import (
	"context"
	"fmt"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
)

var lessonEventColumns = []string{
	"id", "sequence", "timestamp", "session_id", "lesson_id", "action",
	"skill", "step_index", "accepted", "score", "detail",
}

func (r *eventRepo) AppendLessonEvent(ctx context.Context, data LessonEventData) error {
	seqNum, err := r.seq.Next(ctx)
	if err != nil {
		return fmt.Errorf("next sequence: %w", err)
	}

	query, args := entsql.Dialect(dialect.SQLite).
		Insert(LessonEventsTable.Name).
		Columns(lessonEventColumns[1:]...).
		Values(
			seqNum, time.Now().UTC(), data.SessionID, data.LessonID, data.Action,
			data.Skill, data.StepIndex, data.Accepted, data.Score, data.Detail,
		).
		Query()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("save lesson event: %w", err)
	}
	return nil
}

func (r *eventRepo) QueryLessonEvents(ctx context.Context, opts QueryOpts) ([]LessonEvent, error) {
	sel := entsql.Dialect(dialect.SQLite).
		Select(lessonEventColumns...).
		From(entsql.Table(LessonEventsTable.Name)).
		OrderBy(entsql.Desc("sequence"))
	applyQueryOpts(sel, opts)

	query, args := sel.Query()
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query lesson events: %w", err)
	}
	defer rows.Close()

	var events []LessonEvent
	for rows.Next() {
		var e LessonEvent
		err := rows.Scan(
			&e.ID, &e.Sequence, &e.Timestamp, &e.SessionID, &e.LessonID, &e.Action,
			&e.Skill, &e.StepIndex, &e.Accepted, &e.Score, &e.Detail,
		)
		if err != nil {
			return nil, fmt.Errorf("scan lesson event: %w", err)
		}
		events = append(events, e)
	}
	return events, rows.Err()
}
