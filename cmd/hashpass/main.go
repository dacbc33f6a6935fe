package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/gestaozabele/gabinete/internal/auth"
)

func main() {
	validar := flag.Bool("validar", false, "rejeita senhas que não atendem à política de senha forte")
	flag.Parse()

	if flag.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "usage: hashpass [-validar] <senha>")
		os.Exit(1)
	}
	senha := flag.Arg(0)

	if *validar {
		if err := auth.ValidarSenhaForte(senha); err != nil {
			fmt.Fprintf(os.Stderr, "senha fraca: %v\n", err)
			os.Exit(1)
		}
	}

	hash, err := auth.Hash(senha)
	if err != nil {
		fmt.Fprintf(os.Stderr, "hash error: %v\n", err)
		os.Exit(1)
	}

	fmt.Println(hash)
}
