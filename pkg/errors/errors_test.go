package errors

import (
	"fmt"
	"strings"
	"testing"
)

func TestNewNotFittedError(t *testing.T) {
	err := NewNotFittedError("Classifier", "Predict")

	want := "watertable: Classifier: this estimator is not fitted yet. Call Fit() before using Predict()"
	if err.Error() != want {
		t.Errorf("Error() = %v, want %v", err.Error(), want)
	}

	var notFitted *NotFittedError
	if !As(err, &notFitted) {
		t.Error("Error should be castable to *NotFittedError")
	}

	formatted := fmt.Sprintf("%+v", err)
	if !strings.Contains(formatted, "errors_test.go") {
		t.Error("Expected stack trace to contain test file name")
	}
}

func TestNewDimensionError(t *testing.T) {
	tests := []struct {
		name string
		axis int
		want string
	}{
		{
			name: "rows",
			axis: 0,
			want: "watertable: Predict: dimension mismatch on axis 0 (rows). Expected 10, got 8",
		},
		{
			name: "features",
			axis: 1,
			want: "watertable: Predict: dimension mismatch on axis 1 (features). Expected 10, got 8",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewDimensionError("Predict", 10, 8, tt.axis)
			if err.Error() != tt.want {
				t.Errorf("Error() = %v, want %v", err.Error(), tt.want)
			}

			var dimErr *DimensionError
			if !As(err, &dimErr) {
				t.Error("Error should be castable to *DimensionError")
			}
		})
	}
}

func TestNewSchemaError(t *testing.T) {
	err := NewSchemaError("Transform", "region", "categorical column missing from table")

	want := `watertable: Transform: schema mismatch on column "region": categorical column missing from table`
	if err.Error() != want {
		t.Errorf("Error() = %v, want %v", err.Error(), want)
	}

	var schemaErr *SchemaError
	if !As(err, &schemaErr) {
		t.Error("Error should be castable to *SchemaError")
	}
	if schemaErr.Column != "region" {
		t.Errorf("Column = %v, want region", schemaErr.Column)
	}
}

func TestNewModelError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "with original error",
			err:  fmt.Errorf("test error"),
			want: "watertable: Fit: invalid input: test error",
		},
		{
			name: "without original error",
			err:  nil,
			want: "watertable: Fit: invalid input",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewModelError("Fit", "invalid input", tt.err)
			if err.Error() != tt.want {
				t.Errorf("Error() = %v, want %v", err.Error(), tt.want)
			}

			var modelErr *ModelError
			if !As(err, &modelErr) {
				t.Error("Error should be castable to *ModelError")
			}
		})
	}
}

func TestModelErrorUnwrapsSentinel(t *testing.T) {
	err := NewModelError("Fit", "empty data", ErrEmptyData)
	if !Is(err, ErrEmptyData) {
		t.Error("ModelError should unwrap to its sentinel cause")
	}
}
