package logging

var IsStdoutSyncErrorForTest = isStdoutSyncError
