package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"
)

var (
	errorLogger *log.Logger
	debugLogger *log.Logger
	// debugSnapDumpLen limits how many bytes of a snapshot payload are logged.
	// A value of 0 dumps the entire payload.
	debugSnapDumpLen = 256
)

func setupLogging(debug bool) {
	logDir := filepath.Join(baseDir, "logs", "errors")
	if err := os.MkdirAll(logDir, 0755); err != nil {
		fmt.Printf("could not create log directory: %v\n", err)
	}
	ts := time.Now().Format("20060102-150405")

	errPath := filepath.Join(logDir, fmt.Sprintf("error-%s.log", ts))
	errFile, err := os.Create(errPath)
	var errWriter io.Writer = os.Stdout
	if err == nil {
		errWriter = io.MultiWriter(os.Stdout, errFile)
	}
	errorLogger = log.New(errWriter, "", log.LstdFlags)
	log.SetOutput(errWriter)

	setDebugLogging(debug)
}

func logError(format string, v ...interface{}) {
	if errorLogger != nil {
		errorLogger.Printf(format, v...)
	}
}

func logDebug(format string, v ...interface{}) {
	if debugLogger != nil {
		debugLogger.Printf(format, v...)
	}
}

func logDebugSnapshot(prefix string, data []byte) {
	if debugLogger == nil {
		return
	}
	n := len(data)
	dump := data
	if debugSnapDumpLen > 0 && n > debugSnapDumpLen {
		dump = data[:debugSnapDumpLen]
	}
	debugLogger.Printf("%s len=%d payload=%s", prefix, n, dump)
}

func setDebugLogging(enabled bool) {
	if enabled {
		logDir := filepath.Join(baseDir, "logs", "errors")
		if err := os.MkdirAll(logDir, 0755); err != nil {
			fmt.Printf("could not create log directory: %v\n", err)
		}
		ts := time.Now().Format("20060102-150405")
		dbgPath := filepath.Join(logDir, fmt.Sprintf("debug-%s.log", ts))
		dbgFile, err := os.Create(dbgPath)
		var dbgWriter io.Writer
		if err == nil {
			dbgWriter = io.MultiWriter(os.Stdout, dbgFile)
		} else {
			dbgWriter = os.Stdout
		}
		debugLogger = log.New(dbgWriter, "", log.LstdFlags)
	} else {
		debugLogger = nil
	}
}
