package logging

import (
    "fmt"
    "io"
    "os"

    "github.com/sirupsen/logrus"
)

// New builds a logger writing to stdout and, when path is set, appending to the file at path.
// The returned closer releases the file.
func New(path string, verbose bool, stdout io.Writer) (*logrus.Logger, io.Closer, error) {
    logger := logrus.New()
    logger.SetFormatter(&logrus.TextFormatter{
        FullTimestamp:   true,
        TimestampFormat: "2006-01-02 15:04:05",
        DisableColors:   true,
    })
    logger.SetLevel(logrus.InfoLevel)
    if verbose {
        logger.SetLevel(logrus.DebugLevel)
    }

    if path == "" {
        logger.SetOutput(stdout)
        return logger, io.NopCloser(nil), nil
    }
    f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
    if err != nil {
        return nil, nil, fmt.Errorf("open log file: %w", err)
    }
    logger.SetOutput(io.MultiWriter(f, stdout))
    return logger, f, nil
}
