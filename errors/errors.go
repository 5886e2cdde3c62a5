/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package errors

import (
	"errors"
	"fmt"
)

// Common sentinel errors
var (
	// ErrNotFound is returned when a document is not found
	ErrNotFound = errors.New("document not found")

	// ErrAlreadyExists is returned when attempting to create a document that already exists
	ErrAlreadyExists = errors.New("document already exists")

	// ErrInvalidInput is returned when input validation fails
	ErrInvalidInput = errors.New("invalid input")

	// ErrConditionFailed is returned when a conditional write fails
	ErrConditionFailed = errors.New("condition check failed")

	// ErrConfiguration is returned when a repository or connection cannot be configured
	ErrConfiguration = errors.New("invalid configuration")

	// ErrClassNotFound is returned when an entity class name does not resolve to a registered factory
	ErrClassNotFound = errors.New("entity class not found")

	// ErrPersistence is returned when a save or delete fails at the client layer
	ErrPersistence = errors.New("persistence failed")
)

// NotFoundError represents an error when a document is not found
type NotFoundError struct {
	Type string
	Key  string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s with key %q not found", e.Type, e.Key)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// AlreadyExistsError represents an error when a document already exists
type AlreadyExistsError struct {
	Type string
	Key  string
}

func (e *AlreadyExistsError) Error() string {
	return fmt.Sprintf("%s with key %q already exists", e.Type, e.Key)
}

func (e *AlreadyExistsError) Is(target error) bool {
	return target == ErrAlreadyExists
}

// ValidationError represents an input validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed for field %q: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// ConditionFailedError represents a failed conditional operation
type ConditionFailedError struct {
	Operation string
	Condition string
}

func (e *ConditionFailedError) Error() string {
	return fmt.Sprintf("condition check failed for %s operation: %s", e.Operation, e.Condition)
}

func (e *ConditionFailedError) Is(target error) bool {
	return target == ErrConditionFailed
}

// ConfigurationError reports a setting that could not be resolved, such as a
// connection name with nothing registered under it.
type ConfigurationError struct {
	Setting string
	Message string
}

func (e *ConfigurationError) Error() string {
	if e.Setting != "" {
		return fmt.Sprintf("configuration error for %q: %s", e.Setting, e.Message)
	}
	return fmt.Sprintf("configuration error: %s", e.Message)
}

func (e *ConfigurationError) Is(target error) bool {
	return target == ErrConfiguration
}

// ClassNotFoundError reports an entity class name that has no registered factory.
// Name is the name that was asked for, Class the qualified name it resolved to.
type ClassNotFoundError struct {
	Name  string
	Class string
}

func (e *ClassNotFoundError) Error() string {
	if e.Class != "" && e.Class != e.Name {
		return fmt.Sprintf("entity class %q (resolved from %q) not found", e.Class, e.Name)
	}
	return fmt.Sprintf("entity class %q not found", e.Name)
}

func (e *ClassNotFoundError) Is(target error) bool {
	return target == ErrClassNotFound
}

// PersistenceError wraps a failed client call made on behalf of a repository.
// The wrapped error stays reachable through errors.Is / errors.As.
type PersistenceError struct {
	Operation string
	Type      string
	Key       string
	Err       error
}

func (e *PersistenceError) Error() string {
	target := e.Type
	if e.Key != "" {
		target = fmt.Sprintf("%s %q", e.Type, e.Key)
	}
	if e.Err == nil {
		return fmt.Sprintf("%s of %s failed", e.Operation, target)
	}
	return fmt.Sprintf("%s of %s failed: %v", e.Operation, target, e.Err)
}

func (e *PersistenceError) Is(target error) bool {
	return target == ErrPersistence
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// Helper functions for creating errors

// NewNotFoundError creates a new NotFoundError
func NewNotFoundError(docType, key string) error {
	return &NotFoundError{Type: docType, Key: key}
}

// NewAlreadyExistsError creates a new AlreadyExistsError
func NewAlreadyExistsError(docType, key string) error {
	return &AlreadyExistsError{Type: docType, Key: key}
}

// NewValidationError creates a new ValidationError
func NewValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// NewConditionFailedError creates a new ConditionFailedError
func NewConditionFailedError(operation, condition string) error {
	return &ConditionFailedError{Operation: operation, Condition: condition}
}

// NewConfigurationError creates a new ConfigurationError
func NewConfigurationError(setting, message string) error {
	return &ConfigurationError{Setting: setting, Message: message}
}

// NewClassNotFoundError creates a new ClassNotFoundError
func NewClassNotFoundError(name, class string) error {
	return &ClassNotFoundError{Name: name, Class: class}
}

// NewPersistenceError creates a new PersistenceError wrapping err
func NewPersistenceError(operation, docType, key string, err error) error {
	return &PersistenceError{Operation: operation, Type: docType, Key: key, Err: err}
}

// IsNotFound checks if an error is a not found error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsAlreadyExists checks if an error is an already exists error
func IsAlreadyExists(err error) bool {
	return errors.Is(err, ErrAlreadyExists)
}

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// IsConditionFailed checks if an error is a condition failed error
func IsConditionFailed(err error) bool {
	return errors.Is(err, ErrConditionFailed)
}

// IsConfigurationError checks if an error is a configuration error
func IsConfigurationError(err error) bool {
	return errors.Is(err, ErrConfiguration)
}

// IsClassNotFound checks if an error is a class not found error
func IsClassNotFound(err error) bool {
	return errors.Is(err, ErrClassNotFound)
}

// IsPersistenceError checks if an error is a persistence error
func IsPersistenceError(err error) bool {
	return errors.Is(err, ErrPersistence)
}
