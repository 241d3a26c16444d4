package config

type WorkerKeyStruct struct {
	PersistViolationsQueue string
	LevelChangeQueue       string
}

var WorkerKey = &WorkerKeyStruct{
	PersistViolationsQueue: "persist_violations_queue",
	LevelChangeQueue:       "level_change_queue",
}
