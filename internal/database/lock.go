package database

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

const lockFileSuffix = ".lock"

// Lock é um lock de arquivo ao lado do banco, para que dois processos
// (ex: "serve" e "scan") nunca executem ciclos ao mesmo tempo
type Lock struct {
	lock *flock.Flock
	path string
}

// NewLock cria o lock para o banco em dbPath
func NewLock(dbPath string) (*Lock, error) {
	absPath, err := filepath.Abs(dbPath)
	if err != nil {
		return nil, fmt.Errorf("caminho absoluto do banco: %w", err)
	}
	lockPath := absPath + lockFileSuffix
	return &Lock{lock: flock.New(lockPath), path: lockPath}, nil
}

// TryLock tenta obter o lock sem esperar
func (l *Lock) TryLock() (bool, error) {
	locked, err := l.lock.TryLock()
	if err != nil {
		return false, fmt.Errorf("obter lock em %s: %w", l.path, err)
	}
	return locked, nil
}

// Unlock libera o lock
func (l *Lock) Unlock() error {
	if err := l.lock.Unlock(); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("liberar lock em %s: %w", l.path, err)
	}
	return nil
}
