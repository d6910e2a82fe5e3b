// seed_sunat genera scripts SQL para poblar la tabla de ubigeos (departamentos,
// provincias y distritos del Perú) a partir del TXT oficial del INEI.
//
// Uso: go run ./cmd/seed_sunat [ruta/Ubigeo.txt]
// Por defecto busca Ubigeo.txt en el directorio actual. El archivo viene en
// ISO-8859-1 con líneas "código|nombre" (código de 6 dígitos).
// Escribe: internal/infrastructure/postgres/migrations/011_seed_ubigeo.sql
package main

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

type ubigeo struct {
	code string // 6 dígitos: DDPPDD (departamento, provincia, distrito)
	name string
}

func main() {
	txtPath := "Ubigeo.txt"
	if len(os.Args) > 1 {
		txtPath = os.Args[1]
	}
	f, err := os.Open(txtPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Abrir TXT: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()

	var entries []ubigeo
	sc := bufio.NewScanner(transform.NewReader(f, charmap.ISO8859_1.NewDecoder()))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		parts := strings.SplitN(line, "|", 2)
		if len(parts) != 2 {
			continue
		}
		code := strings.TrimSpace(parts[0])
		name := strings.TrimSpace(parts[1])
		if len(code) != 6 || name == "" {
			continue
		}
		entries = append(entries, ubigeo{code: code, name: name})
	}
	if err := sc.Err(); err != nil {
		fmt.Fprintf(os.Stderr, "Leer TXT: %v\n", err)
		os.Exit(1)
	}

	// Salida estable por código
	sort.Slice(entries, func(i, j int) bool { return entries[i].code < entries[j].code })

	// Departamentos (XX0000) y provincias (XXXX00) se reconocen por los ceros
	// finales; lo demás son distritos.
	var deptos, provincias, distritos []ubigeo
	for _, u := range entries {
		switch {
		case strings.HasSuffix(u.code, "0000"):
			deptos = append(deptos, u)
		case strings.HasSuffix(u.code, "00"):
			provincias = append(provincias, u)
		default:
			distritos = append(distritos, u)
		}
	}

	moduleRoot := findModuleRoot()
	outPath := filepath.Join(moduleRoot, "internal", "infrastructure", "postgres", "migrations", "011_seed_ubigeo.sql")
	out, err := os.Create(outPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Crear archivo: %v\n", err)
		os.Exit(1)
	}
	defer out.Close()

	out.WriteString("-- Ubigeos del Perú (código INEI de 6 dígitos)\n")
	out.WriteString("-- Generado desde Ubigeo.txt (INEI)\n\n")

	writeSection(out, "1. Departamentos", "departamento", deptos)
	writeSection(out, "2. Provincias", "provincia", provincias)
	writeSection(out, "3. Distritos", "distrito", distritos)

	fmt.Printf("Generado %s: %d departamentos, %d provincias, %d distritos\n",
		outPath, len(deptos), len(provincias), len(distritos))
}

func writeSection(out *os.File, title, level string, list []ubigeo) {
	if len(list) == 0 {
		return
	}
	fmt.Fprintf(out, "-- %s\n", title)
	out.WriteString("INSERT INTO ubigeos (code, name, level) VALUES\n")
	for i, u := range list {
		sep := ","
		if i == len(list)-1 {
			sep = ""
		}
		fmt.Fprintf(out, "  ('%s', '%s', '%s')%s\n", u.code, escapeSQL(u.name), level, sep)
	}
	out.WriteString("ON CONFLICT (code) DO UPDATE SET name = EXCLUDED.name;\n\n")
}

func escapeSQL(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}

func findModuleRoot() string {
	dir, _ := os.Getwd()
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return dir
		}
		dir = parent
	}
}
