package util

import "errors"

var (
	ErrUserNotFound        = errors.New("user not found")
	ErrEmailRegistered     = errors.New("email already registered")
	ErrInvalidCredentials  = errors.New("invalid email or password")
	ErrGoalNotFound        = errors.New("goal not found")
	ErrRoadmapNotFound     = errors.New("roadmap not found")
	ErrRoadmapTaskNotFound = errors.New("roadmap task not found")
	ErrTaskNotFound        = errors.New("task not found")
)
