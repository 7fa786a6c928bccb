/*
Copyright © 2024 the ASMN2O authors.
This file is part of ASMN2O.

ASMN2O is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

ASMN2O is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with ASMN2O.  If not, see <http://www.gnu.org/licenses/>.
*/

// Command asmn2o is a command-line interface for the ASMN2O
// activated-sludge nitrous oxide model.
package main

import (
	"fmt"
	"os"

	"github.com/watermodel/asmn2o/asmn2outil"
)

func main() {
	if err := asmn2outil.Root.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(-1)
	}
}
