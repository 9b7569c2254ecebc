package dummydb

import (
	"sync"

	"github.com/visado/backend/core/document"
	"github.com/visado/backend/core/user"
	"github.com/visado/backend/core/visa"
)

type (
	DB struct {
		user     *userTable
		visa     *visaTable
		document *documentTable
	}

	userTable struct {
		sync.RWMutex
		table       map[string]*user.User
		assignments map[string][]string // adminID -> clientIDs
	}

	visaTable struct {
		sync.RWMutex
		rubrics     map[visa.Program]*visa.Rubric
		assessments map[string]*visa.Assessment
	}

	documentTable struct {
		sync.RWMutex
		table map[string]*document.Document
	}
)

func Open() (*DB, error) {
	db := &DB{
		user: &userTable{
			table:       make(map[string]*user.User),
			assignments: make(map[string][]string),
		},
		visa: &visaTable{
			rubrics:     make(map[visa.Program]*visa.Rubric),
			assessments: make(map[string]*visa.Assessment),
		},
		document: &documentTable{table: make(map[string]*document.Document)},
	}
	return db, nil
}
