package bot

import "errors"

var (
	// ErrAPIRequired is returned when a Telegram API handle is not provided.
	ErrAPIRequired = errors.New("telegram api required")

	// ErrCatalogRepositoryRequired is returned when a catalog repository is not provided.
	ErrCatalogRepositoryRequired = errors.New("catalog repository required")

	// ErrMatcherRequired is returned when a matcher is not provided.
	ErrMatcherRequired = errors.New("matcher required")

	// ErrCycleRunnerRequired is returned when a cycle runner is not provided.
	ErrCycleRunnerRequired = errors.New("cycle runner required")
)
