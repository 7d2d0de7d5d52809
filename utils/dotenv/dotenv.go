// Package dotenv layers .env files so local overrides beat per-environment
// files, which in turn beat the shared .env. Call LoadDotEnvs once in main;
// everything downstream reads plain os.Getenv.
package dotenv

import (
	"os"
	"regexp"

	"github.com/joho/godotenv"
)

// Recognized values of INKWELL_ENV.
const (
	DevEnv  = "dev"
	TestEnv = "test"
	ProdEnv = "prod"
)

// LoadDotEnvs resolves the runtime environment from INKWELL_ENV (defaulting
// to dev) and loads, in priority order: .env.<env>.local, .env.local,
// .env.<env>, .env. godotenv never overwrites a variable that is already set,
// so earlier files win.
func LoadDotEnvs() error {
	env := os.Getenv("INKWELL_ENV")
	if env == "" {
		env = DevEnv
	}
	godotenv.Load(".env." + env + ".local")
	godotenv.Load(".env.local")
	godotenv.Load(".env." + env)
	godotenv.Load(".env")
	return nil
}

// LoadDotEnvsInTests loads .env.test from the repository root regardless of
// which package directory the test binary runs in (godotenv resolves paths
// relative to the working directory, see joho/godotenv#43).
func LoadDotEnvsInTests() error {
	re := regexp.MustCompile(`^(.*inkwell)`)
	cwd, _ := os.Getwd()
	rootPath := re.Find([]byte(cwd))

	godotenv.Load(string(rootPath) + "/" + ".env.test")
	return nil
}
