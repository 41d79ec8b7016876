package domain

// WorkerBody — то, что выполняет один воркер в рамках fork-join запуска
type WorkerBody func(worker int) error
