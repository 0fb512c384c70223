package generator

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/jinzhu/inflection"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/btouchard/tova/internal/compiler/ast"
	"github.com/btouchard/tova/internal/compiler/utils"
)

// MigrateSQLite materializes a local dev-convenience SQLite schema from a
// set of ModelDeclarations — independent of the JS codegen's lazy-init db
// client emission in gen_server.go. No tovac subcommand calls it. It
// creates tables only (no validation, no data), generalizing the teacher's
// gen_models.go (static Go struct + gorm tag generation) to a
// runtime-constructed reflect.StructOf type carrying the same tags, and
// inflection.Plural for the table name the way the teacher's gen_services.go
// pluralizes route prefixes.
//
// BeforeCreate hooks cannot be attached to a reflect.StructOf type — Go has
// no way to bind a method to a type built at runtime — so the teacher's
// generated BeforeCreate-based uuid default is NOT reproduced here. The
// emitted JS model factory (gen_server.go's emitModelFactory) does not fill
// in @default(uuid_v4) either: it copies the given fields as they are.
func MigrateSQLite(dbPath string, models []*ast.ModelDeclaration) error {
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{})
	if err != nil {
		return fmt.Errorf("opening dev sqlite db: %w", err)
	}
	for _, m := range models {
		structType := buildStructType(m)
		tableName := inflection.Plural(strings.ToLower(m.Name))
		instance := reflect.New(structType).Interface()
		if err := db.Table(tableName).AutoMigrate(instance); err != nil {
			return fmt.Errorf("migrating %s: %w", m.Name, err)
		}
	}
	return nil
}

// buildStructType constructs the Go struct type AutoMigrate needs to infer
// a matching SQLite schema: a synthetic primary key plus one field per
// ModelDeclaration field, tagged with its column name.
func buildStructType(m *ast.ModelDeclaration) reflect.Type {
	fields := []reflect.StructField{
		{Name: "ID", Type: reflect.TypeOf(uint(0)), Tag: `gorm:"primaryKey"`},
	}
	for _, f := range m.Fields {
		fields = append(fields, reflect.StructField{
			Name: utils.ToPascalCase(f.Name),
			Type: goFieldType(f.Type),
			Tag:  reflect.StructTag(fmt.Sprintf(`gorm:"column:%s"`, f.Name)),
		})
	}
	return reflect.StructOf(fields)
}

// goFieldType maps a Tova field type annotation to the Go type GORM infers
// the matching SQLite column kind from; anything not recognized falls back
// to string, the least lossy representation for a dev-only mirror schema.
func goFieldType(tovaType string) reflect.Type {
	switch tovaType {
	case "Int":
		return reflect.TypeOf(int64(0))
	case "Float":
		return reflect.TypeOf(float64(0))
	case "Bool":
		return reflect.TypeOf(false)
	default:
		return reflect.TypeOf("")
	}
}
