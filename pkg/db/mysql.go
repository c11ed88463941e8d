package db

import (
	"database/sql"
	"fmt"
	"os"
	"strings"

	driver "github.com/go-sql-driver/mysql"
	"github.com/joho/godotenv"
)

// MySQLDSNFromEnv builds a DSN from MYSQL_DSN or, when unset, from
// MYSQL_HOST, MYSQL_PORT, MYSQL_USER, MYSQL_PASS and MYSQL_DB.
// A .env file in the working directory is loaded first.
func MySQLDSNFromEnv() string {
	_ = loadDotEnv()
	if dsn := os.Getenv("MYSQL_DSN"); dsn != "" {
		return dsn
	}
	host := getenv("MYSQL_HOST", "127.0.0.1")
	port := getenv("MYSQL_PORT", "3306")
	user := getenv("MYSQL_USER", "root")
	pass := getenv("MYSQL_PASS", "")
	dbname := getenv("MYSQL_DB", "wgadmin")
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local", user, pass, host, port, dbname)
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func loadDotEnv() error {
	if _, err := os.Stat(".env"); err == nil {
		return godotenv.Load(".env")
	}
	return nil
}

func isUnknownDatabase(err error) bool {
	return err != nil && strings.Contains(err.Error(), "Unknown database")
}

// createDatabase connects without a schema and creates the one named in dsn.
func createDatabase(dsn string) error {
	cfg, err := driver.ParseDSN(dsn)
	if err != nil {
		return err
	}
	name := cfg.DBName
	if name == "" {
		return fmt.Errorf("mysql dsn names no database")
	}
	cfg.DBName = ""
	db, err := sql.Open("mysql", cfg.FormatDSN())
	if err != nil {
		return err
	}
	defer db.Close()
	_, err = db.Exec(fmt.Sprintf("CREATE DATABASE IF NOT EXISTS `%s` DEFAULT CHARACTER SET utf8mb4", name))
	return err
}
