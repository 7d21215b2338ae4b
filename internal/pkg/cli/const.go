package cli

var releaseChoices = []string{"8.10.x", "8.11.x", "9.0.x", "9.1.x"}

var logLevelChoices = []string{"info", "debug", "trace", "error"}
