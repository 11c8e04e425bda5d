// Command sbtreebench drives the sbtree engine against an in-memory or
// file-backed storage adapter and reports buffer-pool pressure — the
// benchmark harness and data-file ingestion named out of scope for the
// core in §1, kept here as the external collaborator that exercises it.
package main

import (
	"encoding/binary"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/ryogrid/sbtree"
	"github.com/ryogrid/sbtree/storage/fileadapter"
	"github.com/ryogrid/sbtree/storage/memadapter"
)

func main() {
	n := flag.Int("n", 100000, "number of keys to insert")
	pageSize := flag.Int("page-size", 512, "page size in bytes")
	dataSize := flag.Int("data-size", 12, "value size in bytes")
	frames := flag.Int("frames", 5, "buffer pool frame count")
	file := flag.String("file", "", "backing file path (empty: in-memory)")
	flag.Parse()

	var adapter interface {
		ReadPage(id uint32, size int, dst []byte) error
		WritePage(id uint32, size int, src []byte) error
		Sync() error
		Close() error
	}
	if *file == "" {
		adapter = memadapter.New()
	} else {
		a, err := fileadapter.Open(*file, *pageSize)
		if err != nil {
			log.Fatalf("sbtreebench: open %s: %v", *file, err)
		}
		adapter = a
	}
	defer adapter.Close()

	cfg := sbtree.Config{
		PageSize:   *pageSize,
		KeySize:    4,
		DataSize:   *dataSize,
		Frames:     *frames,
		Comparator: sbtree.Uint32Comparator{},
		Storage:    adapter,
		Logf:       log.Printf,
	}
	engine, err := sbtree.Open(cfg)
	if err != nil {
		log.Fatalf("sbtreebench: open engine: %v", err)
	}

	key := make([]byte, 4)
	value := make([]byte, *dataSize)
	start := time.Now()
	for i := 0; i < *n; i++ {
		binary.LittleEndian.PutUint32(key, uint32(i))
		binary.LittleEndian.PutUint32(value, uint32(i))
		if err := engine.Put(key, value); err != nil {
			log.Fatalf("sbtreebench: put %d: %v", i, err)
		}
	}
	if err := engine.Flush(); err != nil {
		log.Fatalf("sbtreebench: flush: %v", err)
	}
	putElapsed := time.Since(start)

	dst := make([]byte, *dataSize)
	start = time.Now()
	for i := 0; i < *n; i++ {
		binary.LittleEndian.PutUint32(key, uint32(i))
		if err := engine.Get(key, dst); err != nil {
			log.Fatalf("sbtreebench: get %d: %v", i, err)
		}
	}
	getElapsed := time.Since(start)

	hits, reads, writes := engine.Stats()
	fmt.Printf("n=%d levels=%d put=%s get=%s hits=%d reads=%d writes=%d\n",
		*n, engine.Levels(), putElapsed, getElapsed, hits, reads, writes)
}
