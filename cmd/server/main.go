package main

import (
	"os"

	"inkwell/auth"
	"inkwell/blog"
	"inkwell/filestore"
	"inkwell/server"
	"inkwell/server/middlewares"
	"inkwell/store/postgres"
	"inkwell/utils"
	"inkwell/utils/dotenv"
	Flag "inkwell/utils/flag"
	Logger "inkwell/utils/log"
)

const localMediaDir = "media"

func main() {
	Flag.Setup()
	if err := dotenv.LoadDotEnvs(); err != nil {
		panic(err)
	}
	// Re-init so the logger picks up the environment the dotenv files set.
	Logger.InitLogger()

	db, err := utils.GetDBConnection()
	if err != nil {
		Logger.Log.WithError(err).Fatal("cannot connect to database")
	}
	utils.DatabaseSetupAndMigration(db)

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		Logger.Log.Fatal("JWT_SECRET is required")
	}

	st := postgres.NewStore(db)
	tokens := auth.NewTokenService(st, []byte(secret))
	svc := blog.NewService(st, tokens)
	middlewares.Setup(svc)

	files, serveLocal, err := buildFileStore()
	if err != nil {
		Logger.Log.WithError(err).Fatal("cannot initialize media store")
	}

	router := server.NewRouter(svc, files)
	if serveLocal {
		router.Static("/media", localMediaDir)
	}

	Logger.Log.Info("api server starts up on ", Flag.Addr)
	router.Run(Flag.Addr)
}

// buildFileStore picks S3 when a bucket is configured and falls back to local
// disk for development. The second return reports whether main should serve
// the local media directory itself.
func buildFileStore() (filestore.FileStore, bool, error) {
	if bucket := os.Getenv("MEDIA_S3_BUCKET"); bucket != "" {
		fs, err := filestore.NewS3FileStore(
			os.Getenv("AWS_REGION"),
			bucket,
			os.Getenv("MEDIA_URL_PREFIX"),
		)
		return fs, false, err
	}
	prefix := os.Getenv("MEDIA_URL_PREFIX")
	if prefix == "" {
		prefix = "/media/"
	}
	fs, err := filestore.NewLocalFileStore(localMediaDir, prefix)
	return fs, true, err
}
