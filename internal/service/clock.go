package service

import "time"

// Clock выделен в интерфейс, чтобы тесты управляли временем
// записей журнала и таймстемпов статусов.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

func RealClock() Clock { return realClock{} }
