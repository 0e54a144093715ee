package test

import (
	"fmt"
	"sync"
	"testing"
	"time"
)

// TestTimer จับเวลาของ test หนึ่งตัว
type TestTimer struct {
	start time.Time
	name  string
}

func NewTestTimer(name string) *TestTimer {
	return &TestTimer{start: time.Now(), name: name}
}

// Stop stops the timer and prints the duration
func (t *TestTimer) Stop() time.Duration {
	duration := time.Since(t.start)
	fmt.Printf("⏱️  %s took %v\n", t.name, duration)
	return duration
}

// PerformanceAssertion checks if a test meets performance requirements
func PerformanceAssertion(t *testing.T, testName string, duration, maxDuration time.Duration) {
	t.Helper()
	if duration > maxDuration {
		t.Errorf("❌ %s took %v, expected less than %v", testName, duration, maxDuration)
	}
}

type TestResult struct {
	Name     string
	Duration time.Duration
	Passed   bool
	Error    error
}

// TestSuiteResult สรุปผลของ test หลายตัว ใช้ได้จากหลาย goroutine
type TestSuiteResult struct {
	mu          sync.Mutex
	SuiteName   string
	TotalTests  int
	PassedTests int
	FailedTests int
	TotalTime   time.Duration
	Results     []TestResult
}

func NewTestSuiteResult(suiteName string) *TestSuiteResult {
	return &TestSuiteResult{SuiteName: suiteName}
}

func (s *TestSuiteResult) AddResult(result TestResult) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.Results = append(s.Results, result)
	s.TotalTests++
	s.TotalTime += result.Duration
	if result.Passed {
		s.PassedTests++
	} else {
		s.FailedTests++
	}
}

// PrintSummary prints a summary of the test suite results
func (s *TestSuiteResult) PrintSummary() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.TotalTests == 0 {
		return
	}
	fmt.Printf("\n📊 %s: %d passed ✅, %d failed ❌ in %v\n", s.SuiteName, s.PassedTests, s.FailedTests, s.TotalTime)
	for _, r := range s.Results {
		status := "✅"
		if !r.Passed {
			status = "❌"
		}
		fmt.Printf("   %s %s: %v", status, r.Name, r.Duration)
		if r.Error != nil {
			fmt.Printf(" (Error: %v)", r.Error)
		}
		fmt.Println()
	}
}
