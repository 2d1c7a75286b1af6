package services

import "errors"

var (
	ErrNotAssigned      = errors.New("module is not assigned to any of your groups")
	ErrAlreadyUnlocked  = errors.New("module is already unlocked")
	ErrAlreadyPending   = errors.New("an access request is already pending")
	ErrAlreadyApproved  = errors.New("access has already been approved")
	ErrNotPending       = errors.New("request is no longer pending")
	ErrInvalidStatus    = errors.New("invalid approval status")
	ErrNoAccess         = errors.New("you are not allowed to act on this student")
	ErrScoreOutOfRange  = errors.New("score is out of range")
	ErrMaxAttempts      = errors.New("maximum number of attempts reached")
	ErrAnswerCount      = errors.New("answer count does not match question count")
	ErrAlreadyGraded    = errors.New("submission has already been graded")
	ErrModuleLocked     = errors.New("module is locked")
	ErrDiscussionTarget = errors.New("exactly one of module_id or group_id is required")
)
