package fetch

import "fmt"

type ErrFileNotFound struct {
	error
}

func NewErrFileNotFound(path string) *ErrFileNotFound {
	return &ErrFileNotFound{fmt.Errorf("file %s does not exist", path)}
}

type ErrRepositoryNotFound struct {
	error
}

func NewErrRepositoryNotFound(repo string) *ErrRepositoryNotFound {
	return &ErrRepositoryNotFound{fmt.Errorf("hub repository %s not found", repo)}
}

type ErrUnsupportedLocator struct {
	error
}

func NewErrUnsupportedLocator(locator any) *ErrUnsupportedLocator {
	return &ErrUnsupportedLocator{fmt.Errorf("no fetcher configured for locator %v", locator)}
}
