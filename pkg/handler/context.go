package handler

// DI for all handlers and models alike.

import (
	methdb "github.com/scmviz/methylome/pkg/db"
)

type AppContext struct {
	DB *methdb.MethDB
}
