package ecovalley

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

// StageLogger records the execution of each stage of a suggest request.
type StageLogger interface {
	LogStage(stage StageLog) error
}

// NewStageLogFilePath returns a timestamped path for a file stage log.
func NewStageLogFilePath(dir string) string {
	return fmt.Sprintf("%s/%d.stages.json", dir, time.Now().Unix())
}

// StageLog is one executed stage of one request.
type StageLog struct {
	RequestID string        `json:"request_id"`
	Stage     string        `json:"stage"`
	Timestamp time.Time     `json:"timestamp"`
	Duration  time.Duration `json:"duration_ns"`
	Materials int           `json:"materials"`
	Error     string        `json:"error,omitempty"`
}

// FileStageLogger buffers stage logs and writes them as one JSON document on Flush.
type FileStageLogger struct {
	mu     sync.Mutex
	stages []StageLog
	writer io.Writer
}

func NewFileStageLogger(writer io.Writer) *FileStageLogger {
	return &FileStageLogger{
		stages: make([]StageLog, 0),
		writer: writer,
	}
}

// LogStage appends to the buffer; nothing is written until Flush.
func (l *FileStageLogger) LogStage(stage StageLog) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.stages = append(l.stages, stage)
	return nil
}

func (l *FileStageLogger) Flush() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.writer == nil {
		return nil
	}

	data, err := json.MarshalIndent(map[string]any{
		"stage_session": map[string]any{
			"timestamp": time.Now(),
			"stages":    l.stages,
		},
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal stage log: %w", err)
	}

	if _, err := l.writer.Write(data); err != nil {
		return fmt.Errorf("failed to write stage log: %w", err)
	}

	l.stages = l.stages[:0]
	return nil
}

type NoOpStageLogger struct{}

func NewNoOpStageLogger() *NoOpStageLogger {
	return &NoOpStageLogger{}
}

func (NoOpStageLogger) LogStage(StageLog) error {
	return nil
}

// StdoutStageLogger writes each stage as a JSON line (Lambda/CloudWatch).
type StdoutStageLogger struct {
	w io.Writer
}

func NewStdoutStageLogger() *StdoutStageLogger {
	return &StdoutStageLogger{w: os.Stdout}
}

func (l *StdoutStageLogger) LogStage(stage StageLog) error {
	data, err := json.Marshal(stage)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(l.w, string(data))
	return err
}
