/*
Copyright (C) 2026  Carl-Philip Hänsch

	This program is free software: you can redistribute it and/or modify
	it under the terms of the GNU General Public License as published by
	the Free Software Foundation, either version 3 of the License, or
	(at your option) any later version.

	This program is distributed in the hope that it will be useful,
	but WITHOUT ANY WARRANTY; without even the implied warranty of
	MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
	GNU General Public License for more details.

	You should have received a copy of the GNU General Public License
	along with this program.  If not, see <https://www.gnu.org/licenses/>.
*/

// Command dbcloud-demo wires the cloud bootstrap pipeline up against a
// fake object store and a toy engine, the way main.go wires memcp's
// storage layer up against a real PersistenceFactory, minus the SQL REPL
// this core has no use for.
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/launix-de/lsmcloud/cloud"
	"github.com/launix-de/lsmcloud/internal/refengine"
)

func main() {
	fmt.Println("dbcloud-demo: cloud-backed LSM bootstrap core")

	dir, err := os.MkdirTemp("", "dbcloud-demo-*")
	if err != nil {
		log.Fatalf("mktemp: %v", err)
	}
	defer os.RemoveAll(dir)

	store := cloud.NewFakeObjectStore()
	local := cloud.NewOSLocalFS(dir)
	dest := cloud.BucketCoordinate{Bucket: "demo-bucket", Prefix: "db1"}
	env := cloud.NewEnv(local, store, cloud.BucketCoordinate{}, dest)

	engine := refengine.New(dir)
	opts := cloud.Options{
		CloudType:             cloud.CloudAWS,
		KeepLocalSSTFiles:     true,
		ValidateFilesize:      true,
		MaxOpenFiles:          -1,
		MaxFileOpeningThreads: 4,
	}

	db, err := cloud.Open(env, engine, opts, nil, nil)
	if err != nil {
		log.Fatalf("open: %v", err)
	}
	fmt.Printf("opened database %q at %s\n", db.DbID(), dir)

	engine.AddLiveFile("000123.sst", 4096, 0)
	if err := cloud.Savepoint(env, engine, opts.MaxFileOpeningThreads); err != nil {
		log.Fatalf("savepoint: %v", err)
	}
	fmt.Println("savepoint complete")

	if err := db.Close(); err != nil {
		log.Fatalf("close: %v", err)
	}
	fmt.Println("closed cleanly")
}
