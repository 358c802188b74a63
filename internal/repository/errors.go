// Package repository holds the MySQL adapters of the service ports. Find
// methods report a missing row as (nil, nil); constraint violations come
// back as model errors so services can match them with errors.Is.
package repository

import (
	"errors"

	"github.com/go-sql-driver/mysql"
)

// MySQL server error numbers the adapters translate.
const (
	errDupEntry         = 1062
	errRowIsReferenced  = 1451
	errRowIsReferenced2 = 1217
	errNoReferencedRow  = 1452
)

func mysqlCode(err error) uint16 {
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		return me.Number
	}
	return 0
}

func isDuplicate(err error) bool { return mysqlCode(err) == errDupEntry }

func isReferenced(err error) bool {
	c := mysqlCode(err)
	return c == errRowIsReferenced || c == errRowIsReferenced2
}

func isMissingParent(err error) bool { return mysqlCode(err) == errNoReferencedRow }
